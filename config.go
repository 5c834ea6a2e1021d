package samlgate

import (
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/philiph/samlgate/internal/adapters/driven/signature"
	"github.com/philiph/samlgate/internal/adapters/driven/trust"
	"github.com/philiph/samlgate/internal/core/domain"
)

// ServiceProviderConfig identifies this service provider to the validator:
// its entity ID (the audience assertions must be restricted to), the
// assertion-consumer-service URL responses must be addressed to, and the
// keys used to decrypt encrypted assertions and attributes. Read-only after
// construction.
type ServiceProviderConfig struct {
	EntityID       string
	ACSURL         string
	DecryptionKeys []*rsa.PrivateKey
}

func (c ServiceProviderConfig) validate() error {
	if c.EntityID == "" {
		return domain.Rejection(domain.ErrCodeServiceError, "service provider entity ID is required")
	}
	if c.ACSURL == "" {
		return domain.Rejection(domain.ErrCodeServiceError, "assertion consumer service URL is required")
	}
	return nil
}

// IdentityProviderConfig is the trust anchor for the issuing IdP: the
// issuer entity ID and the certificates signatures are verified against.
// AdditionalIssuers covers deployments where the assertion issuer differs
// from the response issuer (delegation).
type IdentityProviderConfig struct {
	EntityID          string
	AdditionalIssuers []string
	Certificates      []*x509.Certificate
}

// FileConfig is the on-disk YAML configuration consumed by cmd/samlcheck
// and by embedders that prefer file-based setup.
type FileConfig struct {
	SP struct {
		EntityID string `yaml:"entity_id"`
		ACSURL   string `yaml:"acs_url"`
		KeyFile  string `yaml:"key_file"` // optional, PEM RSA decryption key
	} `yaml:"sp"`
	IdP struct {
		MetadataFile string `yaml:"metadata_file"` // either this...
		EntityID     string `yaml:"entity_id"`     // ...or entity_id + cert_file
		CertFile     string `yaml:"cert_file"`
	} `yaml:"idp"`
	ClockSkew string `yaml:"clock_skew"` // Go duration string, defaults to DefaultClockSkew
}

// LoadFileConfig reads and parses a YAML configuration file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// BuildValidator constructs a ResponseValidator from the file configuration,
// loading key material and IdP trust from the referenced files.
func (cfg *FileConfig) BuildValidator(opts ...ValidatorOption) (*ResponseValidator, error) {
	sp := ServiceProviderConfig{
		EntityID: cfg.SP.EntityID,
		ACSURL:   cfg.SP.ACSURL,
	}
	if cfg.SP.KeyFile != "" {
		key, err := signature.LoadPrivateKey(cfg.SP.KeyFile)
		if err != nil {
			return nil, err
		}
		sp.DecryptionKeys = []*rsa.PrivateKey{key}
	}

	var idp IdentityProviderConfig
	switch {
	case cfg.IdP.MetadataFile != "":
		anchor, err := trust.FromMetadataFile(cfg.IdP.MetadataFile)
		if err != nil {
			return nil, err
		}
		idp.EntityID = anchor.EntityID
		idp.Certificates = anchor.Certificates
	case cfg.IdP.EntityID != "" && cfg.IdP.CertFile != "":
		certs, err := signature.LoadSigningCertificates(cfg.IdP.CertFile)
		if err != nil {
			return nil, err
		}
		idp.EntityID = cfg.IdP.EntityID
		idp.Certificates = certs
	default:
		return nil, fmt.Errorf("config needs either idp.metadata_file or idp.entity_id plus idp.cert_file")
	}

	if cfg.ClockSkew != "" {
		skew, err := time.ParseDuration(cfg.ClockSkew)
		if err != nil {
			return nil, fmt.Errorf("parse clock_skew: %w", err)
		}
		opts = append([]ValidatorOption{WithClockSkew(skew)}, opts...)
	}
	return NewResponseValidator(sp, idp, opts...)
}
