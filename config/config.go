package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const StoreDirName = "objects"

type Node struct {
	// Id identifies the node to its callers; pointers minted here carry
	// it as their location.
	Id string `yaml:"id"`
	// Binding is the websocket listen address, host:port.
	Binding string `yaml:"binding"`
	// DataDir, when set, switches the node to the durable object store
	// rooted there. Empty means in-memory only.
	DataDir string `yaml:"dataDir,omitempty"`
	// Debug attaches the dispatch statistics collector.
	Debug bool `yaml:"debug,omitempty"`

	Sessions SessionsConfig `yaml:"sessions"`
	Cache    Cache          `yaml:"cache"`
}

type Cache struct {
	StandardTTL time.Duration `yaml:"standard-ttl"`
}

type SessionsConfig struct {
	MaxConnections           int     `yaml:"maxConnections"`
	WebSocketReadBufferSize  int     `yaml:"webSocketReadBufferSize"`
	WebSocketWriteBufferSize int     `yaml:"webSocketWriteBufferSize"`
	RateLimit                float64 `yaml:"rateLimit"`
	RateBurst                int     `yaml:"rateBurst"`
}

var (
	ErrNodeIdRequired  = errors.New("node id is required")
	ErrBindingRequired = errors.New("node binding is required")
)

func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Node
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (n *Node) Validate() error {
	if n.Id == "" {
		return ErrNodeIdRequired
	}
	if n.Binding == "" {
		return ErrBindingRequired
	}
	return nil
}
