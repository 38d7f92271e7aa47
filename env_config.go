package typeorm

import (
	"os"
	"strconv"
	"strings"
)

// Environment configuration uses the TYPEORM_* prefix:
//
//	TYPEORM_HOST, TYPEORM_PORT, TYPEORM_USERNAME, TYPEORM_PASSWORD,
//	TYPEORM_DATABASE, TYPEORM_USE_POOL, TYPEORM_CLIENT_PACKAGE,
//	TYPEORM_EXTRA (k=v pairs joined with '&', e.g. "sslmode=disable&TimeZone=UTC")
//
// Set variables override the corresponding Options fields; unset variables
// leave them untouched.

func applyEnv(o *Options) {
	if v := os.Getenv("TYPEORM_HOST"); v != "" {
		o.Host = v
	}
	if v := os.Getenv("TYPEORM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			o.Port = port
		}
	}
	if v := os.Getenv("TYPEORM_USERNAME"); v != "" {
		o.Username = v
	}
	if v := os.Getenv("TYPEORM_PASSWORD"); v != "" {
		o.Password = v
	}
	if v := os.Getenv("TYPEORM_DATABASE"); v != "" {
		o.Database = v
	}
	if v := os.Getenv("TYPEORM_USE_POOL"); v != "" {
		if usePool, err := strconv.ParseBool(v); err == nil {
			o.UsePool = &usePool
		}
	}
	if v := os.Getenv("TYPEORM_CLIENT_PACKAGE"); v != "" {
		o.ClientPackage = v
	}
	if v := os.Getenv("TYPEORM_EXTRA"); v != "" {
		if o.Extra == nil {
			o.Extra = make(map[string]string)
		}
		for _, pair := range strings.Split(v, "&") {
			k, val, ok := strings.Cut(pair, "=")
			if ok && k != "" {
				o.Extra[k] = val
			}
		}
	}
}
