package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/CodedInternet/goservod/canbus"
	"github.com/CodedInternet/goservod/comms"
	"github.com/CodedInternet/goservod/drivers/cannode"
	"github.com/CodedInternet/goservod/drivers/uartmcu"
	"github.com/CodedInternet/goservod/servo"
	"github.com/abiosoft/ishell"
	"github.com/asdine/storm/v3"
	"github.com/caarlos0/env/v6"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"gopkg.in/yaml.v2"
)

type EnvConfig struct {
	JWT_ISSUER string `env:"RESIN_DEVICE_UUID" envDefault:"DEV"`
	RESIN      bool   `env:"RESIN" envDefault:"0"`
	DEBUG      bool   `env:"DEBUG" envDefault:"0"`
	SRCDIR     string `env:"SRCDIR" envDefault:"."`
	HTMLDIR    string `env:"HTMLDIR" envDefault:"./frontend/dist/"`
	DB         *storm.DB
	Registry   *servo.Registry
	Conductor  *comms.Conductor
	Simulated  bool
}

var (
	ENV *EnvConfig
)

func init() {
	// Load main config
	ENV = new(EnvConfig)
	env.Parse(ENV)

	// get db path, this depends on if we are running on a resin device
	var dbFile string
	if ENV.RESIN {
		dbFile = "/data/live.db"
	} else {
		dbFile, _ = filepath.Abs("./tmp/dev.db")
		dir := filepath.Dir(dbFile)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			os.Mkdir(dir, 0755)
		}
	}

	db, err := openDb(dbFile)
	if err != nil {
		panic(err)
	}
	ENV.DB = db

	return
}

func main() {
	// process flags
	simulated := flag.Bool("sim", false, "Run all motors against simulated drivers")
	port := flag.String("port", "0.0.0.0:80", "Specify the ip:port to listen on")
	flag.Parse()

	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Recoverer) // make sure this is last

	defer ENV.DB.Close() // close database when finished

	// Load the motor layout before anything touches the hardware
	var filename string
	var err error
	if ENV.RESIN {
		println("Running on resin")
		filename = "/data/servod_config.yaml"
	} else {
		filename, err = filepath.Abs(ENV.SRCDIR + "/servod_config.yaml")
		if err != nil {
			panic(err)
		}
	}
	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		panic(fmt.Sprintf("Unable to read yaml file: %v", err))
	}

	var config servo.ServodConfig
	err = yaml.Unmarshal(yamlFile, &config)
	if err != nil {
		panic(fmt.Sprintf("Unable to unmarshal yaml: %v", err))
	}

	ENV.Simulated = *simulated

	registry := servo.NewRegistry()
	ENV.Registry = registry

	if err = buildMotors(&config, registry, ENV.Simulated); err != nil {
		panic(fmt.Sprintf("Unable to bring up motors: %v", err))
	}

	ENV.Conductor = comms.NewConductor(registry)
	go ENV.Conductor.UpdateClients()

	//---
	// Create a local shell
	//---
	{
		motorNames := func([]string) []string {
			return registry.Devices()
		}

		shell := ishell.New()
		shell.Println("Servod development shell")
		shell.ShowPrompt(true)
		shell.AddCmd(&ishell.Cmd{
			Name: "createsuperuser",
			Help: "createsuperuser <email> <password>",
			Func: func(c *ishell.Context) {
				// disable the '>>>' for cleaner same line input.
				c.ShowPrompt(false)
				defer c.ShowPrompt(true) // yes, revert when done.

				// get email
				var email string
				if len(c.Args) >= 1 {
					email = c.Args[0]
				} else {
					c.Print("Email: ")
					email = c.ReadLine()
				}

				// get password
				var password string
				if len(c.Args) >= 2 {
					password = c.Args[1]
				} else {
					c.Print("Password: ")
					password = c.ReadPassword()
				}

				// create user
				user := &User{
					Email: email,
					Name:  email,
					Admin: true,
				}
				user.SetPassword([]byte(password))
				err := ENV.DB.Save(user)
				if err != nil {
					panic(err)
				}

				c.Println("Superuser created")
			},
		})

		// Add device specific commands
		shell.AddCmd(&ishell.Cmd{
			Name:      "get",
			Completer: motorNames,
			Help:      "get <motor> <attribute>",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 2 {
					c.Err(fmt.Errorf("usage: get <motor> <attribute>"))
					return
				}
				motor, ok := registry.Get(c.Args[0])
				if !ok {
					c.Err(fmt.Errorf("no motor %q", c.Args[0]))
					return
				}
				attr, ok := servo.LookupAttribute(c.Args[1])
				if !ok {
					c.Err(fmt.Errorf("no attribute %q", c.Args[1]))
					return
				}
				value, err := attr.Show(motor)
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("%s %s = %s\n", motor.Device(), attr.Name, value)
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name:      "set",
			Completer: motorNames,
			Help:      "set <motor> <attribute> <value>",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 3 {
					c.Err(fmt.Errorf("usage: set <motor> <attribute> <value>"))
					return
				}
				motor, ok := registry.Get(c.Args[0])
				if !ok {
					c.Err(fmt.Errorf("no motor %q", c.Args[0]))
					return
				}
				attr, ok := servo.LookupAttribute(c.Args[1])
				if !ok || !attr.Writable {
					c.Err(fmt.Errorf("no writable attribute %q", c.Args[1]))
					return
				}
				if err := attr.Store(motor, c.Args[2]); err != nil {
					c.Err(err)
				}
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name:      "float",
			Completer: motorNames,
			Help:      "float <motor>  (remove drive power)",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					c.Err(fmt.Errorf("usage: float <motor>"))
					return
				}
				motor, ok := registry.Get(c.Args[0])
				if !ok {
					c.Err(fmt.Errorf("no motor %q", c.Args[0]))
					return
				}
				if err := motor.SetCommand(servo.CommandFloat); err != nil {
					c.Err(err)
				}
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "state",
			Help: "Reads the stored state of every motor",
			Func: func(c *ishell.Context) {
				for _, m := range registry.Motors() {
					s := m.State()
					c.Printf("%s (%s): command=%s polarity=%s position=%d\n",
						s.Device, s.PortName, s.Command, s.Polarity, s.Position)
				}
			},
		})

		// Start an instance of the shell so it can be controlled from the CLI
		go shell.Start()
	}

	//---
	// Build the API routes
	//---
	r.Route("/api", func(r chi.Router) {
		// login
		r.Post("/login", Login)

		r.Route("/", func(r chi.Router) {
			// Seek, verify and validate JWT tokens
			r.Use(ValidateJWT)

			r.Get("/refresh_token", JWTRefresh)

			r.Get("/motors", ListMotors)
			r.Route("/motors/{device}", func(r chi.Router) {
				r.Get("/", GetMotor)
				r.Get("/attributes/{attr}", GetAttribute)
				r.Put("/attributes/{attr}", SetAttribute)
			})
		})

	})

	// Add websocket routes
	r.Route("/ws", func(r chi.Router) {
		if ENV.RESIN && !ENV.DEBUG {
			// Enable JWT validation in production
			r.Use(ValidateJWT)
		} else {
			fmt.Println("Running in debug mode. Authentication disabled.")
		}

		r.Get("/echo", EchoHandler)
		r.Get("/state", StateSocketHandler)
	})

	// add static base routes
	FileServer(r, "/", http.Dir(ENV.HTMLDIR))

	fmt.Println("Listening on port", *port)
	if err := http.ListenAndServe(*port, r); err != nil {
		log.Fatal(err)
	}
}

// buildMotors brings up the transports and drivers named in the config and
// registers one motor per port entry. Transports are shared: one MCU per
// tty, one bus per CAN interface, one node per bus address.
func buildMotors(config *servo.ServodConfig, registry *servo.Registry, simulated bool) error {
	mcus := make(map[string]*uartmcu.MCU)
	buses := make(map[string]*canbus.CANBus)
	nodes := make(map[string]*cannode.Node)

	for port, conf := range config.Motors {
		var driver servo.Driver
		var err error

		switch {
		case simulated || conf.Driver == "simulated":
			if conf.Rate {
				driver = servo.NewSimulatedRateDriver(conf.Name)
			} else {
				driver = servo.NewSimulatedDriver(conf.Name)
			}

		case conf.Driver == "uartmcu":
			mcu, ok := mcus[conf.Device]
			if !ok {
				if mcu, err = uartmcu.Open(conf.Device); err != nil {
					return fmt.Errorf("port %s: %v", port, err)
				}
				mcus[conf.Device] = mcu
			}
			if conf.Rate {
				driver = mcu.RateServo(int(conf.Address), conf.Name)
			} else {
				driver = mcu.Servo(int(conf.Address), conf.Name)
			}

		case conf.Driver == "cannode":
			bus, ok := buses[conf.Device]
			if !ok {
				if bus, err = canbus.NewCANBus(conf.Device); err != nil {
					return fmt.Errorf("port %s: %v", port, err)
				}
				buses[conf.Device] = bus
			}
			key := fmt.Sprintf("%s#%d", conf.Device, conf.Address)
			node, ok := nodes[key]
			if !ok {
				if node, err = cannode.NewNode(bus, conf.Address); err != nil {
					return fmt.Errorf("port %s: %v", port, err)
				}
				nodes[key] = node
			}
			driver = node.Servo(conf.Index, conf.Name)

		default:
			return fmt.Errorf("port %s: unknown driver %q", port, conf.Driver)
		}

		if _, err = registry.Register(driver, ENV.JWT_ISSUER, port); err != nil {
			return fmt.Errorf("port %s: %v", port, err)
		}
	}
	return nil
}

func openDb(dbFile string) (db *storm.DB, err error) {
	db, err = storm.Open(dbFile)
	if err != nil {
		return
	}

	// call inits for each type
	if err := db.Init(&User{}); err != nil {
		return nil, err
	}

	return
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	fs := http.StripPrefix(path, http.FileServer(root))

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", 301).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	}))
}
