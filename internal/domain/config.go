package domain

// ValidNitsConfigName is the name of the configuration document holding the NIT allow-list.
const ValidNitsConfigName = "validNits"

// DefaultValidNits seeds the allow-list when the store has none.
var DefaultValidNits = []string{"900123456-7", "800555444-2", "901987654-3"}

type NitConfig struct {
	Name string   `json:"name"`
	Nits []string `json:"nits"`
}

func (c *NitConfig) Allows(nit string) bool {
	if c == nil || nit == "" {
		return false
	}
	for _, n := range c.Nits {
		if n == nit {
			return true
		}
	}
	return false
}
