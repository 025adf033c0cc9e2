package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// Supported publisher types.
	TypeSQS    = "sqs"
	TypeSNS    = "sns"
	TypePubSub = "pubsub"
	TypeHTTP   = "http"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

// PublisherConfig is one entry of a publishers file. Exactly the section
// matching Type is required.
type PublisherConfig struct {
	ID      string                 `json:"id" yaml:"id" validate:"required"`
	Type    string                 `json:"type" yaml:"type" validate:"required"`
	Enabled *bool                  `json:"enabled" yaml:"enabled"`
	SQS     *SQSPublisherConfig    `json:"sqs" yaml:"sqs" validate:"required_if=Type sqs"`
	SNS     *SNSPublisherConfig    `json:"sns" yaml:"sns" validate:"required_if=Type sns"`
	PubSub  *PubSubPublisherConfig `json:"pubsub" yaml:"pubsub" validate:"required_if=Type pubsub"`
	HTTP    *HTTPPublisherConfig   `json:"http" yaml:"http" validate:"required_if=Type http"`
}

// AWSAccess holds the optional overrides shared by the AWS publishers. Left
// empty, the default credential chain and endpoint resolution apply.
type AWSAccess struct {
	Endpoint        string `json:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key" validate:"required_with=AccessKeyID"`
}

type SQSPublisherConfig struct {
	QueueURL  string `json:"uri" yaml:"uri" validate:"required,url"`
	Region    string `json:"region" yaml:"region" validate:"required"`
	AWSAccess `yaml:",inline"`
}

type SNSPublisherConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn" validate:"required,startswith=arn:"`
	Region    string `json:"region" yaml:"region" validate:"required"`
	AWSAccess `yaml:",inline"`
}

// PubSubPublisherConfig points at a Google Cloud Pub/Sub topic. Endpoint is
// meant for emulators.
type PubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id" validate:"required"`
	Topic           string `json:"topic" yaml:"topic" validate:"required"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
}

// HTTPPublisherConfig posts each event as JSON to URL.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url" validate:"required,url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
}

// EnabledValue returns the enabled flag, defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}

// ConfigRegistry holds the validated entries of a publishers file, in file
// order. It is read-only once loaded.
type ConfigRegistry struct {
	publishers []PublisherConfig
	idx        map[string]int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadRegistry reads a YAML or JSON publishers file:
//
//	publishers:
//	  - id: audit
//	    type: http
//	    http:
//	      url: https://audit.internal/beer-events
func LoadRegistry(path string) (*ConfigRegistry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	var file struct {
		Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &file)
	case ".json":
		err = json.Unmarshal(raw, &file)
	default:
		return nil, fmt.Errorf("publishers file %q: unsupported extension %q (expected .yaml, .yml or .json)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode publishers file: %w", err)
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	reg := &ConfigRegistry{
		publishers: make([]PublisherConfig, 0, len(file.Publishers)),
		idx:        make(map[string]int, len(file.Publishers)),
	}
	for i, entry := range file.Publishers {
		cfg := normalize(entry)
		if err := validatePublisherConfig(cfg); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.idx[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.idx[cfg.ID] = len(reg.publishers)
		reg.publishers = append(reg.publishers, cfg)
	}
	return reg, nil
}

// normalize trims every string field and fills the HTTP defaults.
func normalize(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	if c := cfg.SQS; c != nil {
		cp := *c
		cp.QueueURL = strings.TrimSpace(cp.QueueURL)
		cp.Region = strings.TrimSpace(cp.Region)
		cp.AWSAccess = trimAWSAccess(cp.AWSAccess)
		cfg.SQS = &cp
	}
	if c := cfg.SNS; c != nil {
		cp := *c
		cp.TopicARN = strings.TrimSpace(cp.TopicARN)
		cp.Region = strings.TrimSpace(cp.Region)
		cp.AWSAccess = trimAWSAccess(cp.AWSAccess)
		cfg.SNS = &cp
	}
	if c := cfg.PubSub; c != nil {
		cp := *c
		cp.ProjectID = strings.TrimSpace(cp.ProjectID)
		cp.Topic = strings.TrimSpace(cp.Topic)
		cp.CredentialsFile = strings.TrimSpace(cp.CredentialsFile)
		cp.Endpoint = strings.TrimSpace(cp.Endpoint)
		cfg.PubSub = &cp
	}
	if c := cfg.HTTP; c != nil {
		cp := *c
		cp.URL = strings.TrimSpace(cp.URL)
		cp.Method = strings.ToUpper(strings.TrimSpace(cp.Method))
		if cp.Method == "" {
			cp.Method = httpDefaultMethod
		}
		if cp.TimeoutSeconds <= 0 {
			cp.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		headers := make(map[string]string, len(cp.Headers))
		for k, v := range cp.Headers {
			if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
				headers[k] = v
			}
		}
		cp.Headers = headers
		cfg.HTTP = &cp
	}
	return cfg
}

func trimAWSAccess(a AWSAccess) AWSAccess {
	a.Endpoint = strings.TrimSpace(a.Endpoint)
	a.AccessKeyID = strings.TrimSpace(a.AccessKeyID)
	a.SecretAccessKey = strings.TrimSpace(a.SecretAccessKey)
	return a
}

func validatePublisherConfig(cfg PublisherConfig) error {
	if err := validate.Struct(cfg); err != nil {
		if cfg.ID == "" {
			return fmt.Errorf("invalid publisher: %w", err)
		}
		return fmt.Errorf("invalid publisher %q: %w", cfg.ID, err)
	}
	return nil
}

// ByID returns the entry with the given id.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	i, ok := r.idx[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return r.publishers[i], true
}

// Enabled returns the enabled entries in file order.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	if r == nil {
		return nil
	}
	var out []PublisherConfig
	for _, cfg := range r.publishers {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}
