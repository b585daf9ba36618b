// Package letterpdf generates PDF letters from HTML templates with headless
// Chrome. Each letter can embed a freshly generated QR code.
//
// # Quick Start
//
// Create a generator, run a job, and close when done:
//
//	gen, err := letterpdf.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	job := letterpdf.DefaultJob()
//	job.Context["organizationName"] = "Corner Bakery"
//
//	res, err := gen.Generate(ctx, job)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Created %s (%d pages)\n", res.OutputPath, res.Pages)
//
// # Pipeline
//
// A job runs these steps in order:
//
//  1. QR image: the payload is encoded and written as a PNG to QR.ImagePath.
//  2. Template: the named template is rendered with the job context.
//  3. Normalize: the markup is repaired into well-formed XHTML.
//  4. Render: the XHTML is loaded in Chrome with relative references
//     resolved against BaseDir and printed to PDF.
//  5. Write: the PDF is written to OutputPath.
//
// A failing QR step is logged and recorded in Result.QRErr; the letter is
// still produced with whatever image exists at QR.ImagePath. Any other
// failure stops the job and nothing is written.
//
// # Templates
//
// Templates are looked up by name in a TemplateStore. The built-in letters
// ("template" and "welcome") are always available; NewTemplateStore and
// NewS3TemplateStore add a directory or bucket whose templates take
// precedence:
//
//	store, err := letterpdf.NewTemplateStore("letters", letterpdf.StoreOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gen, err := letterpdf.NewGenerator(letterpdf.WithTemplateStore(store))
//
// Templates use html/template syntax by default. Besides the job context
// they receive .qrCode (the QR image path relative to BaseDir), .qrPayload
// and .date.
//
// # Rendering Engines
//
// Two engines drive Chrome: "rod" (default, downloads Chromium when none is
// installed) and "chromedp" (uses the installed Chrome, or a remote one with
// WithRemoteURL). Select with WithEngine.
//
// # Parallel Jobs
//
// A Generator is not safe for concurrent use. GeneratorPool hands out
// Generators, each with its own browser:
//
//	pool := letterpdf.NewGeneratorPool(letterpdf.ResolvePoolSize(0))
//	defer pool.Close()
//
//	gen, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(gen)
//
// # Errors
//
// Errors match the package sentinels with errors.Is: ErrEncoding, ErrIO,
// ErrTemplateNotFound, ErrTemplateSyntax, ErrTemplateRender, ErrParse,
// ErrLayout, ErrInvalidBaseURL, ErrInvalidJob and the browser errors.
// Context cancellation is returned as ctx.Err().
package letterpdf
