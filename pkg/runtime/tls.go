package runtime

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	appconfig "github.com/saker-ai/classroom-avatar/internal/config"
)

// listen serves plain HTTP only when TLS is disabled. Browsers expose speech
// recognition only in secure contexts, so without certificates on disk a
// self-signed one is generated in memory.
func listen(server *http.Server, cfg appconfig.Config, logger *zap.Logger) error {
	if cfg.TLSDisable {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		return server.ListenAndServe()
	}

	certPath := filepath.Clean(cfg.TLSCertPath)
	keyPath := filepath.Clean(cfg.TLSKeyPath)
	if fileExists(certPath) && fileExists(keyPath) {
		logger.Info("starting https server", zap.String("addr", cfg.HTTPAddr), zap.String("cert", certPath))
		return server.ListenAndServeTLS(certPath, keyPath)
	}
	if cfg.TLSRequired {
		logger.Warn("tls required but certs missing; using in-memory cert",
			zap.String("cert", certPath),
			zap.String("key", keyPath),
		)
	}

	cert, err := selfSignedCert(cfg.SystemConfig.Host, time.Now())
	if err != nil {
		return fmt.Errorf("generate tls cert: %w", err)
	}
	server.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	logger.Info("starting https server with in-memory cert", zap.String("addr", cfg.HTTPAddr))
	return server.ListenAndServeTLS("", "")
}

func selfSignedCert(host string, now time.Time) (tls.Certificate, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	dnsNames, ips := certHosts(host, interfaceIPs())
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "classroom-local", Organization: []string{"classroom-avatar"}},
		NotBefore:    now.Add(-time.Minute),
		NotAfter:     now.Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     dnsNames,
		IPAddresses:  ips,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, nil
}

// certHosts lists the names a local certificate should cover.
func certHosts(host string, extra []net.IP) ([]string, []net.IP) {
	dnsNames := []string{"localhost"}
	ips := []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")}
	addIP := func(ip net.IP) {
		if ip == nil || ip.IsUnspecified() {
			return
		}
		if !slices.ContainsFunc(ips, ip.Equal) {
			ips = append(ips, ip)
		}
	}

	host = strings.TrimSpace(host)
	if ip := net.ParseIP(host); ip != nil {
		addIP(ip)
	} else if host != "" && !slices.Contains(dnsNames, host) {
		dnsNames = append(dnsNames, host)
	}
	for _, ip := range extra {
		addIP(ip)
	}
	return dnsNames, ips
}

func interfaceIPs() []net.IP {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, addr := range addrs {
		switch v := addr.(type) {
		case *net.IPNet:
			ips = append(ips, v.IP)
		case *net.IPAddr:
			ips = append(ips, v.IP)
		}
	}
	return ips
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
