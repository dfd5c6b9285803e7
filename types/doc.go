// Package types provides core types used across the agora service.
// This package has ZERO dependencies on other agora packages to avoid
// circular imports. All other packages should import types from here.
package types
