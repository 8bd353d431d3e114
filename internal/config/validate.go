package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if cfg.Control.CriticalTankLevel <= cfg.Control.TankBoundCeiling {
		return fmt.Errorf("criticalTankLevel %.2f must exceed tankBoundCeiling %.2f",
			cfg.Control.CriticalTankLevel, cfg.Control.TankBoundCeiling)
	}

	seen := make(map[string]bool, len(cfg.Console.Accounts))
	for _, a := range cfg.Console.Accounts {
		if seen[a.Username] {
			return fmt.Errorf("duplicate console account %q", a.Username)
		}
		seen[a.Username] = true
	}

	names := make(map[string]bool, len(cfg.Scenario.Topology.Hosts))
	for _, h := range cfg.Scenario.Topology.Hosts {
		if names[h.Name] {
			return fmt.Errorf("duplicate topology host %q", h.Name)
		}
		names[h.Name] = true

		_, subnet, err := net.ParseCIDR(h.Network)
		if err != nil {
			return fmt.Errorf("host %s: %w", h.Name, err)
		}
		if !subnet.Contains(net.ParseIP(h.Address)) {
			return fmt.Errorf("host %s: address %s is outside %s", h.Name, h.Address, h.Network)
		}
	}

	return nil
}

// formatValidationError flattens validator errors into one message
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
