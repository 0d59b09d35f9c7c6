package transport

import (
	"crypto/tls"
	"net"
)

// TLS is a TCP transport wrapping every accepted connection into a TLS server.
type TLS struct {
	cfg *tls.Config
	TCP
}

func NewTLS(cfg *tls.Config) *TLS {
	return &TLS{
		cfg: cfg,
		TCP: newTCP(nil),
	}
}

func (t *TLS) Bind(addr string) error {
	tcp, err := bindTCP(addr)
	if err != nil {
		return err
	}

	t.TCP = newTCP(tlsAdapter{tcp, tls.NewListener(tcp, t.cfg)})

	return nil
}

type tlsAdapter struct {
	*net.TCPListener
	tls net.Listener
}

func (t tlsAdapter) Accept() (net.Conn, error) {
	return t.tls.Accept()
}
