// Package config loads letter configuration from YAML files.
//
// A file describes the default letter and, optionally, a batch:
//
//	output: pdfs/zerobase-qr.pdf
//	baseDir: resources
//	template:
//	  name: template
//	qr:
//	  payload: https://zerobase.io/
//	  width: 350
//	  height: 350
//	letters:
//	  - output: pdfs/welcome-acme.pdf
//	    template: welcome
//	    context:
//	      organizationName: Acme
//
// Keys absent from the file keep the values of DefaultConfig. Unknown keys
// are rejected.
package config
