package typeorm

import (
	"fmt"
	"strconv"
)

// Options configures a Driver. The struct is read once at construction and
// never mutated afterwards.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string

	// UsePool selects pooled mode. Nil means "not specified", which defaults
	// to pooled; only an explicit false turns pooling off.
	UsePool *bool

	// Extra holds free-form connection parameters handed to the client
	// library. On key collision with the fields above, Extra wins.
	Extra map[string]string

	// ClientPackage names the registered client factory to resolve when no
	// factory is injected. Defaults to "pgx".
	ClientPackage string
}

// DefaultPort is used when Options.Port is zero.
const DefaultPort = 5432

// Bool is a convenience for filling Options.UsePool.
func Bool(v bool) *bool { return &v }

// validate fails fast on missing required fields.
func (o *Options) validate() error {
	if o == nil {
		return fmt.Errorf("typeorm: options are required")
	}
	if o.Host == "" {
		return fmt.Errorf("typeorm: options: host is required")
	}
	if o.Database == "" {
		return fmt.Errorf("typeorm: options: database is required")
	}
	if o.Port < 0 || o.Port > 65535 {
		return fmt.Errorf("typeorm: options: port %d out of range", o.Port)
	}
	return nil
}

// pooled reports whether the driver runs in pooled mode.
func (o *Options) pooled() bool {
	return o.UsePool == nil || *o.UsePool
}

// clientPackage returns the factory name to resolve.
func (o *Options) clientPackage() string {
	if o.ClientPackage != "" {
		return o.ClientPackage
	}
	return "pgx"
}

// connectionParams merges the structured fields with the Extra map into the
// flat key/value form client libraries consume. Extra entries override the
// structured fields on collision.
func (o *Options) connectionParams() map[string]string {
	port := o.Port
	if port == 0 {
		port = DefaultPort
	}
	params := map[string]string{
		"host":   o.Host,
		"port":   strconv.Itoa(port),
		"dbname": o.Database,
	}
	if o.Username != "" {
		params["user"] = o.Username
	}
	if o.Password != "" {
		params["password"] = o.Password
	}
	for k, v := range o.Extra {
		params[k] = v
	}
	return params
}
