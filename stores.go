package main

import (
	// Import all object store providers to trigger their init() functions
	_ "github.com/scour-dev/scour/pkg/objstore/file"
	_ "github.com/scour-dev/scour/pkg/objstore/http"
)
