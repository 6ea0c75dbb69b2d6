package main

import (
	"net/http"

	"github.com/CodedInternet/goservod/servo"
	deverrors "github.com/CodedInternet/goservod/servo/errors"
	"github.com/go-chi/chi"
	"github.com/go-chi/render"
)

//---
// Generic error responses
//---

type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrUnauthorized(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized.",
		ErrorText:      err.Error(),
	}
}

func ErrPermissionDenied(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied.",
		ErrorText:      err.Error(),
	}
}

func ErrNotSupported(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusNotImplemented,
		StatusText:     "Not supported.",
		ErrorText:      err.Error(),
	}
}

func ErrDriverFailure(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadGateway,
		StatusText:     "Driver failure.",
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

var ErrNotFound = &ErrResponse{
	HTTPStatusCode: http.StatusNotFound,
	StatusText:     "Resource not found.",
}

// renderMotorError maps class errors onto HTTP status codes. Anything the
// class does not recognise came from the driver and is passed through as a
// bad gateway.
func renderMotorError(w http.ResponseWriter, r *http.Request, err error) {
	switch err.(type) {
	case deverrors.InvalidArgumentError:
		render.Render(w, r, ErrInvalidRequest(err))
	case deverrors.NotSupportedError:
		render.Render(w, r, ErrNotSupported(err))
	case deverrors.RemovedError:
		render.Render(w, r, ErrNotFound)
	default:
		render.Render(w, r, ErrDriverFailure(err))
	}
}

//---
// Payloads
//---

type AttributePayload struct {
	Name     string `json:"name"`
	Writable bool   `json:"writable"`
	Value    string `json:"value"`
}

type AttributeWritePayload struct {
	Value string `json:"value"`
}

func (p *AttributeWritePayload) Bind(r *http.Request) error {
	return nil
}

//---
// Views
//---

// ListMotors reports the stored state of every live motor.
func ListMotors(w http.ResponseWriter, r *http.Request) {
	motors := ENV.Registry.Motors()
	states := make([]servo.MotorState, 0, len(motors))
	for _, m := range motors {
		states = append(states, m.State())
	}
	render.JSON(w, r, states)
}

// GetMotor reports the stored state of a single motor.
func GetMotor(w http.ResponseWriter, r *http.Request) {
	m, ok := ENV.Registry.Get(chi.URLParam(r, "device"))
	if !ok {
		render.Render(w, r, ErrNotFound)
		return
	}
	render.JSON(w, r, m.State())
}

// GetAttribute reads one attribute in its textual form.
func GetAttribute(w http.ResponseWriter, r *http.Request) {
	m, ok := ENV.Registry.Get(chi.URLParam(r, "device"))
	if !ok {
		render.Render(w, r, ErrNotFound)
		return
	}

	attr, ok := servo.LookupAttribute(chi.URLParam(r, "attr"))
	if !ok {
		render.Render(w, r, ErrNotFound)
		return
	}

	value, err := attr.Show(m)
	if err != nil {
		renderMotorError(w, r, err)
		return
	}

	render.JSON(w, r, AttributePayload{
		Name:     attr.Name,
		Writable: attr.Writable,
		Value:    value,
	})
}

// SetAttribute writes one attribute from its textual form. Validation
// happens inside the attribute table before any state is touched.
func SetAttribute(w http.ResponseWriter, r *http.Request) {
	m, ok := ENV.Registry.Get(chi.URLParam(r, "device"))
	if !ok {
		render.Render(w, r, ErrNotFound)
		return
	}

	attr, ok := servo.LookupAttribute(chi.URLParam(r, "attr"))
	if !ok {
		render.Render(w, r, ErrNotFound)
		return
	}
	if !attr.Writable {
		render.Render(w, r, ErrInvalidRequest(
			deverrors.InvalidArgumentError{Attr: attr.Name, Value: "read-only"}))
		return
	}

	data := &AttributeWritePayload{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := attr.Store(m, data.Value); err != nil {
		renderMotorError(w, r, err)
		return
	}

	value, err := attr.Show(m)
	if err != nil {
		renderMotorError(w, r, err)
		return
	}

	render.JSON(w, r, AttributePayload{
		Name:     attr.Name,
		Writable: attr.Writable,
		Value:    value,
	})
}
