package convert

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshport/pkg/wavefront"
)

// ErrMeshNotFound is returned by a SceneMeshProvider for an unknown name.
var ErrMeshNotFound = errors.New("mesh not found")

// ErrUnresolvedMaterial marks a polygon group without a material name.
var ErrUnresolvedMaterial = errors.New("material not resolved")

// IOError reports a file that could not be created or written.
type IOError = wavefront.IOError

// ResolutionError describes a material or texture that could not be resolved.
// It never aborts a conversion; it is collected in a Report.
type ResolutionError struct {
	Mesh     string
	Material string
	Channel  string
	Texture  string
	Err      error
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("mesh %q material %q", e.Mesh, e.Material)
	if e.Channel != "" {
		msg += " channel " + e.Channel
	}
	if e.Texture != "" {
		msg += fmt.Sprintf(" texture %q", e.Texture)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Warning is a non-fatal message from the parser.
type Warning string

func (w Warning) Error() string {
	return string(w)
}

// Report collects the non-fatal diagnostics of one conversion and logs each
// as it arrives.
type Report struct {
	log   *zap.Logger
	diags []error
}

// NewReport returns an empty report logging to log; nil discards.
func NewReport(log *zap.Logger) *Report {
	if log == nil {
		log = zap.NewNop()
	}
	return &Report{log: log}
}

// Add records err.
func (r *Report) Add(err error) {
	r.diags = append(r.diags, err)

	var re *ResolutionError
	if errors.As(err, &re) {
		r.log.Warn("unresolved material",
			zap.String("mesh", re.Mesh),
			zap.String("material", re.Material),
			zap.String("channel", re.Channel),
			zap.String("texture", re.Texture),
			zap.Error(re.Err),
		)
		return
	}
	r.log.Warn(err.Error())
}

// Warn records a parser warning.
func (r *Report) Warn(msg string) {
	r.Add(Warning(msg))
}

// Diagnostics returns the recorded diagnostics in order.
func (r *Report) Diagnostics() []error {
	return r.diags
}

// Len returns the number of diagnostics.
func (r *Report) Len() int {
	return len(r.diags)
}
