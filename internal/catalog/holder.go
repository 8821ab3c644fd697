package catalog

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Holder keeps the active catalog behind an atomic swap so reads never block
// and a hot reload can never expose a half-validated table.
type Holder struct {
	current atomic.Value // holds Catalog
}

func NewHolder() (*Holder, error) {
	v := viper.New()

	v.SetConfigName("stockroom")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/stockroom/config") // Volume-mounted config
	v.AddConfigPath("/etc/stockroom")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("STOCKROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultCatalog()
		v.SetDefault("catalog.brandPrefixes", defaults.BrandPrefixes)
		v.SetDefault("catalog.platformFees", defaults.PlatformFees)
		v.SetDefault("catalog.defaults", defaults.Defaults)
	}

	var cfg Catalog
	if err := v.UnmarshalKey("catalog", &cfg); err != nil {
		return nil, err
	}
	if err := validateCatalog(cfg); err != nil {
		return nil, err
	}

	holder := &Holder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Catalog
		if err := v.UnmarshalKey("catalog", &updated); err != nil {
			log.Printf("[catalog] reload failed: %v", err)
			return
		}
		if err := validateCatalog(updated); err != nil {
			log.Printf("[catalog] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[catalog] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticHolder wraps a fixed catalog; used by tests.
func NewStaticHolder(cfg Catalog) (*Holder, error) {
	if err := validateCatalog(cfg); err != nil {
		return nil, err
	}
	holder := &Holder{}
	holder.current.Store(cfg)
	return holder, nil
}

func (h *Holder) Get() Catalog {
	return h.current.Load().(Catalog)
}
