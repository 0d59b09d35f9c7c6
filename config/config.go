package config

import (
	"time"
)

type (
	Headers struct {
		// MaxHeadSize limits the request line together with all the header fields. Requests
		// with bigger heads are rejected with 431 Request Header Fields Too Large.
		MaxHeadSize int `koanf:"max_head_size"`
		// MaxNumber is the maximal number of header fields a request may carry.
		MaxNumber int `koanf:"max_number"`
		// Prealloc is the initial capacity of the headers storage.
		Prealloc int `koanf:"prealloc"`
	}

	Body struct {
		// MaxSize describes the maximal size of a body, that can be processed. Bigger bodies
		// result in 413 Request Entity Too Large.
		MaxSize uint64 `koanf:"max_size"`
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int `koanf:"read_buffer_size"`
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration `koanf:"read_timeout"`
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration `koanf:"accept_loop_interrupt_period"`
	}

	Loop struct {
		// Workers is the number of goroutines serving the event loop. Handlers run on them,
		// so blocking work must be offloaded.
		Workers int `koanf:"workers"`
		// Housekeeping is the interval of the periodic housekeeping timer.
		Housekeeping time.Duration `koanf:"housekeeping"`
	}

	Static struct {
		// Root is the document root. Files are served from it for GET requests no route matched.
		Root string `koanf:"root"`
		// Index is the file served for requests to directories.
		Index string `koanf:"index"`
	}

	Log struct {
		// Level is one of trace, debug, info, warn, error and off.
		Level string `koanf:"level"`
		// JSON switches the log output format.
		JSON bool `koanf:"json" test:"nullable"`
	}
)

// Config holds settings used across various parts of lantern, mainly restrictions, limitations
// and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Headers Headers `koanf:"headers"`
	Body    Body    `koanf:"body"`
	NET     NET     `koanf:"net"`
	Loop    Loop    `koanf:"loop"`
	Static  Static  `koanf:"static"`
	Log     Log     `koanf:"log"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Headers: Headers{
			MaxHeadSize: 16 * 1024,
			MaxNumber:   50,
			Prealloc:    10,
		},
		Body: Body{
			MaxSize: 512 * 1024 * 1024, // 512 megabytes
		},
		NET: NET{
			ReadBufferSize:            4 * 1024,
			ReadTimeout:               90 * time.Second,
			AcceptLoopInterruptPeriod: 5 * time.Second,
		},
		Loop: Loop{
			Workers:      1,
			Housekeeping: 300 * time.Millisecond,
		},
		Static: Static{
			Root:  ".",
			Index: "index.html",
		},
		Log: Log{
			Level: "info",
		},
	}
}
