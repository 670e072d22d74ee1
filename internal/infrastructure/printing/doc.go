// Package printing provides infrastructure implementations for turning contract
// HTML into PDF documents.
//
// This package contains:
// - PDFRenderer interface for rendering HTML to PDF
// - ChromedpRenderer implementation driving headless Chrome over the DevTools protocol
// - RetryingRenderer decorator that retries transient rendering failures
// - FileSystemStorage, a local archive of rendered PDFs keyed by contract revision
//
// Example usage:
//
//	renderer, err := NewChromedpRenderer(&ChromedpConfig{
//	    DefaultTimeout: 30 * time.Second,
//	    NoSandbox:      true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer renderer.Close()
//
//	result, err := NewRetryingRenderer(renderer, DefaultRetryConfig()).Render(ctx, &RenderRequest{
//	    HTML: html,
//	    Page: contract.ContractPageOptions(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Generated PDF: %d bytes\n", len(result.PDFData))
package printing
