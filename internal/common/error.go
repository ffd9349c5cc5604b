package common

import "fmt"

var (
	ErrManifestNotFound  = fmt.Errorf("manifest not found in archive")
	ErrWrongManifestRoot = fmt.Errorf("unexpected manifest root element")
)
