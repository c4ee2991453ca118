package interp

import (
	"bytes"
	"fmt"
	"log"

	"github.com/abdullahmohammadkhan/ptext-go/events"
	"github.com/abdullahmohammadkhan/ptext-go/graphics"
	"github.com/abdullahmohammadkhan/ptext-go/internal/objscan"
	"github.com/abdullahmohammadkhan/ptext-go/transform"

	"github.com/abdullahmohammadkhan/ptext-go"
)

// Options configures page interpretation.
type Options struct {
	Bus    *events.Bus
	Logger *log.Logger
}

// RunPage interprets one page's content stream (component I): it emits
// BeginPage, drives the operand/operator stream through the graphics
// operator registry, and emits EndPage. Operator-level errors are
// logged and skipped rather than aborting the page, per the error
// taxonomy's UnknownOperator/PDFTypeError recoverability rules.
func RunPage(doc *transform.Document, page *transform.Page, pageNumber int, opts Options) error {
	if opts.Bus == nil {
		return fmt.Errorf("interp: Options.Bus is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	content, err := doc.ContentBytes(page)
	if err != nil {
		return err
	}

	resources := newPageResources(doc.Resolver, page.Resources)
	sink := &eventSink{bus: opts.Bus, pageNumber: pageNumber}

	g := &graphics.Interp{
		Stack:     graphics.NewStack(),
		Resources: resources,
		Sink:      sink,
	}
	g.ExecuteForm = func(inner *graphics.Interp, formContent []byte, formResources graphics.Resources) error {
		saved := inner.Resources
		defer func() { inner.Resources = saved }()
		return execute(inner, formContent, formResources, logger)
	}

	opts.Bus.Emit(events.Event{Kind: events.BeginPage, PageNumber: pageNumber})
	err = execute(g, content, resources, logger)
	opts.Bus.Emit(events.Event{Kind: events.EndPage, PageNumber: pageNumber})
	return err
}

// execute tokenizes content and dispatches each operator against the
// registry. It is the engine behind both a page's own content and a
// recursively invoked Form XObject's content (4.H Do), the latter with
// Resources swapped to the form's own dictionary.
func execute(g *graphics.Interp, content []byte, resources graphics.Resources, logger *log.Logger) error {
	g.Resources = resources

	s, err := objscan.New(bytes.NewReader(content))
	if err != nil {
		return err
	}

	var operands []pdf.Object
	for {
		operand, operatorName, err := s.ReadOperandOrOperator()
		if err != nil {
			break // EOF or a syntax error both end the stream; the page is done either way
		}
		if operatorName == "" {
			operands = append(operands, operand)
			continue
		}

		if err := dispatch(g, operatorName, operands, logger); err != nil {
			logger.Printf("pdf: operator %s: %v", operatorName, err)
		}
		operands = operands[:0]
	}
	return nil
}

func dispatch(g *graphics.Interp, name string, operands []pdf.Object, logger *log.Logger) error {
	op, ok := graphics.Registry[name]
	if !ok {
		if g.Stack.InCompatibilitySection() {
			return nil // unrecognized operator inside BX/EX: silently skipped
		}
		logger.Printf("pdf: unknown operator %s", name)
		return nil
	}

	if op.Arity >= 0 && len(operands) != op.Arity {
		if g.Stack.InCompatibilitySection() {
			return nil
		}
		return &pdf.TypeError{
			Expected: fmt.Sprintf("%d operands for %s", op.Arity, name),
			Received: fmt.Sprintf("%d", len(operands)),
		}
	}

	return op.Handler(g, operands)
}
