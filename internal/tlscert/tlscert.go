// Package tlscert optionally provisions a Let's Encrypt certificate
// for the control surface via HTTP-01, adapted from pkg/acme's
// multi-domain client down to the single `--tls-domain` case
// netspotd actually needs.
package tlscert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge/http01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"
)

type user struct {
	email        string
	registration *registration.Resource
	key          *ecdsa.PrivateKey
}

func (u *user) GetEmail() string                            { return u.email }
func (u *user) GetRegistration() *registration.Resource      { return u.registration }
func (u *user) GetPrivateKey() interface{}                   { return u.key }

// Provisioner holds the ACME account and the single certificate it
// obtains for Domain.
type Provisioner struct {
	domain  string
	certDir string

	mu   sync.RWMutex
	cert *tls.Certificate
}

// New registers an ACME account (generating and persisting one under
// certDir if none exists) and obtains a certificate for domain via
// HTTP-01, served from httpChallengePort.
func New(domain, email, certDir string, httpChallengePort int) (*Provisioner, error) {
	if domain == "" {
		return nil, fmt.Errorf("tlscert: domain is required")
	}
	if err := os.MkdirAll(certDir, 0o755); err != nil {
		return nil, fmt.Errorf("tlscert: create cert directory: %w", err)
	}

	u, err := loadOrCreateUser(certDir, email)
	if err != nil {
		return nil, fmt.Errorf("tlscert: load/create account: %w", err)
	}

	legoCfg := lego.NewConfig(u)
	legoCfg.CADirURL = lego.LEDirectoryProduction

	client, err := lego.NewClient(legoCfg)
	if err != nil {
		return nil, fmt.Errorf("tlscert: create lego client: %w", err)
	}
	if err := client.Challenge.SetHTTP01Provider(http01.NewProviderServer("", fmt.Sprintf("%d", httpChallengePort))); err != nil {
		return nil, fmt.Errorf("tlscert: set up HTTP-01 provider: %w", err)
	}

	if u.registration == nil {
		reg, err := client.Registration.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
		if err != nil {
			return nil, fmt.Errorf("tlscert: register account: %w", err)
		}
		u.registration = reg
	}

	p := &Provisioner{domain: domain, certDir: certDir}
	if err := p.obtain(client); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provisioner) obtain(client *lego.Client) error {
	res, err := client.Certificate.Obtain(certificate.ObtainRequest{
		Domains: []string{p.domain},
		Bundle:  true,
	})
	if err != nil {
		return fmt.Errorf("tlscert: obtain certificate for %s: %w", p.domain, err)
	}

	certPath := filepath.Join(p.certDir, p.domain+".crt")
	keyPath := filepath.Join(p.certDir, p.domain+".key")
	if err := os.WriteFile(certPath, res.Certificate, 0o644); err != nil {
		return fmt.Errorf("tlscert: write certificate: %w", err)
	}
	if err := os.WriteFile(keyPath, res.PrivateKey, 0o600); err != nil {
		return fmt.Errorf("tlscert: write private key: %w", err)
	}

	pair, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return fmt.Errorf("tlscert: load issued certificate: %w", err)
	}

	p.mu.Lock()
	p.cert = &pair
	p.mu.Unlock()
	return nil
}

// GetCertificate implements the tls.Config.GetCertificate callback
// signature, serving the one certificate this Provisioner holds
// regardless of SNI server name.
func (p *Provisioner) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cert == nil {
		return nil, fmt.Errorf("tlscert: no certificate issued yet for %s", p.domain)
	}
	return p.cert, nil
}

func loadOrCreateUser(certDir, email string) (*user, error) {
	keyPath := filepath.Join(certDir, "account.key")

	if data, err := os.ReadFile(keyPath); err == nil {
		block, _ := pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("decode account key")
		}
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse account key: %w", err)
		}
		return &user{email: email, key: key}, nil
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate account key: %w", err)
	}
	keyBytes, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("marshal account key: %w", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyBytes})
	if err := os.WriteFile(keyPath, pemBytes, 0o600); err != nil {
		return nil, fmt.Errorf("write account key: %w", err)
	}
	return &user{email: email, key: key}, nil
}
