// Package factory provides a small generic registry used to instantiate
// pluggable components from configuration. A component is defined by a type
// string and a map of raw settings. Factories decode the settings into typed
// structs and return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[notify.Sender]()
//	reg.Register("console", func(conf map[string]any) (notify.Sender, error) {
//	    var c struct{ Prefix string `json:"prefix"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newConsole(os.Stdout, c.Prefix), nil
//	})
//	s, err := reg.Create(factory.ModuleConfig{Type: "console"})
package factory
