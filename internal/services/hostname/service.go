// Package hostname applies the configured hostname template to the device.
package hostname

import (
	"strings"

	"github.com/picokit/picoboot/internal/hardware"
	"github.com/picokit/picoboot/internal/models"
	"github.com/rs/zerolog"
)

// Placeholder is the template character replaced by the last octet of the
// assigned IPv4 address. It is the only placeholder recognized.
const Placeholder = "#"

// Service defines the interface for the hostname stage.
type Service interface {
	Apply(template string, assoc *models.AssociationResult) *models.HostnameResult
}

// Impl implements the hostname Service interface.
type Impl struct {
	radio  hardware.Radio
	logger zerolog.Logger
}

// New creates a new hostname service.
func New(logger zerolog.Logger, radio hardware.Radio) *Impl {
	return &Impl{radio: radio, logger: logger}
}

// Apply substitutes the template and sets the device hostname through the
// network stack. Skipped when no template is configured or the association
// did not produce an address.
func (s *Impl) Apply(template string, assoc *models.AssociationResult) *models.HostnameResult {
	result := &models.HostnameResult{Outcome: models.HostnameSkipped}

	if template == "" || !assoc.Connected() || s.radio == nil {
		return result
	}

	name := Substitute(template, assoc.IFConfig.Address)
	if err := s.radio.SetHostname(name); err != nil {
		result.Error = err
		s.logger.Debug().Err(err).Str("hostname", name).Msg("setting hostname failed")
		return result
	}

	result.Outcome = models.HostnameApplied
	result.Hostname = name
	return result
}

// Substitute replaces every placeholder in the template with the last
// dot-delimited octet of the address. A template with no placeholder is
// returned verbatim.
func Substitute(template, address string) string {
	if !strings.Contains(template, Placeholder) {
		return template
	}
	parts := strings.Split(address, ".")
	octet := parts[len(parts)-1]
	return strings.ReplaceAll(template, Placeholder, octet)
}
