package blockmesh

import (
	"io"
	"log"

	"github.com/notargets/blockmesh/polymesh"
)

const (
	DefaultPatchName      = "defaultFaces"
	DefaultMergeTolerance = 1e-4
)

// Context carries the run settings through every pipeline stage
type Context struct {
	Region         string
	Logger         *log.Logger
	Verbose        bool
	MergeTolerance float64 // relative to the smallest generated edge length
	Strategy       CouplingStrategy
	DefaultPatch   string
	DefaultType    polymesh.PatchType
}

// NewContext returns a context with the stock settings and a discarding logger
func NewContext(region string) *Context {
	return &Context{
		Region:         region,
		Logger:         log.New(io.Discard, "", 0),
		MergeTolerance: DefaultMergeTolerance,
		Strategy:       AreaOverlapStrategy{},
		DefaultPatch:   DefaultPatchName,
		DefaultType:    polymesh.PatchEmpty,
	}
}

func (ctx *Context) logf(format string, args ...interface{}) {
	if ctx.Verbose && ctx.Logger != nil {
		ctx.Logger.Printf(format, args...)
	}
}
