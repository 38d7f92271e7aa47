package typeorm

import (
	"sort"
	"strconv"
	"strings"
)

// ConnStringBuilder provides a fluent interface for building libpq-style
// keyword/value connection strings ("host=localhost port=5432 dbname=app").
type ConnStringBuilder struct {
	host     string
	port     int
	username string
	password string
	database string

	sslMode         string
	applicationName string
	connectTimeout  int

	params map[string]string
}

// NewConnStringBuilder creates a builder with the default Postgres port.
func NewConnStringBuilder() *ConnStringBuilder {
	return &ConnStringBuilder{
		port:   DefaultPort,
		params: make(map[string]string),
	}
}

// Host sets the database host.
func (b *ConnStringBuilder) Host(host string) *ConnStringBuilder {
	b.host = host
	return b
}

// Port sets the database port.
func (b *ConnStringBuilder) Port(port int) *ConnStringBuilder {
	b.port = port
	return b
}

// Username sets the database user.
func (b *ConnStringBuilder) Username(username string) *ConnStringBuilder {
	b.username = username
	return b
}

// Password sets the database password.
func (b *ConnStringBuilder) Password(password string) *ConnStringBuilder {
	b.password = password
	return b
}

// Database sets the database name.
func (b *ConnStringBuilder) Database(database string) *ConnStringBuilder {
	b.database = database
	return b
}

// SSLMode sets the sslmode parameter (disable, prefer, require, verify-ca,
// verify-full).
func (b *ConnStringBuilder) SSLMode(mode string) *ConnStringBuilder {
	b.sslMode = mode
	return b
}

// ApplicationName sets the application_name parameter.
func (b *ConnStringBuilder) ApplicationName(name string) *ConnStringBuilder {
	b.applicationName = name
	return b
}

// ConnectTimeout sets connect_timeout in seconds.
func (b *ConnStringBuilder) ConnectTimeout(seconds int) *ConnStringBuilder {
	b.connectTimeout = seconds
	return b
}

// Param sets a custom connection parameter. Custom parameters override the
// structured fields on collision.
func (b *ConnStringBuilder) Param(key, value string) *ConnStringBuilder {
	b.params[key] = value
	return b
}

// Build renders the connection string.
func (b *ConnStringBuilder) Build() string {
	params := map[string]string{}
	if b.host != "" {
		params["host"] = b.host
	}
	if b.port > 0 {
		params["port"] = strconv.Itoa(b.port)
	}
	if b.username != "" {
		params["user"] = b.username
	}
	if b.password != "" {
		params["password"] = b.password
	}
	if b.database != "" {
		params["dbname"] = b.database
	}
	if b.sslMode != "" {
		params["sslmode"] = b.sslMode
	}
	if b.applicationName != "" {
		params["application_name"] = b.applicationName
	}
	if b.connectTimeout > 0 {
		params["connect_timeout"] = strconv.Itoa(b.connectTimeout)
	}
	for k, v := range b.params {
		params[k] = v
	}
	return renderConnString(params)
}

// renderConnString renders a parameter map as a keyword/value connection
// string with keys in stable order. Values containing spaces, quotes or
// backslashes are single-quoted per the libpq rules.
func renderConnString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+quoteConnValue(params[k]))
	}
	return strings.Join(parts, " ")
}

func quoteConnValue(v string) string {
	if v == "" {
		return "''"
	}
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
