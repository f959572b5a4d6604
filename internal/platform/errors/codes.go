// Package errors provides structured service errors and their gRPC mapping.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInvalidSelector Code = "CATALOG_INVALID_SELECTOR"
	CodeInvalidCount    Code = "CATALOG_INVALID_COUNT"
	CodeInvalidAddress  Code = "CATALOG_INVALID_ADDRESS"

	// Build errors
	CodeRequirementsInvalid Code = "BUILD_REQUIREMENTS_INVALID"
	CodeBuildInvalid        Code = "BUILD_INVALID"

	// Lookup errors
	CodeNotFound          Code = "NOT_FOUND"
	CodeCategoryNotFound  Code = "CATALOG_CATEGORY_NOT_FOUND"
	CodeNameNotFound      Code = "CATALOG_NAME_NOT_FOUND"
	CodeShapeNotFound     Code = "CATALOG_SHAPE_NOT_FOUND"
	CodeTierNotFound      Code = "CATALOG_TIER_NOT_FOUND"
	CodeBlueprintNotFound Code = "CATALOG_BLUEPRINT_NOT_FOUND"

	// Catalog state errors
	CodeCatalogSealed Code = "CATALOG_SEALED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidArgument,
		CodeInvalidSelector,
		CodeInvalidCount,
		CodeInvalidAddress,
		CodeRequirementsInvalid,
		CodeBuildInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeCatalogSealed:
		return codes.FailedPrecondition

	// NotFound - key is not indexed
	case CodeNotFound,
		CodeCategoryNotFound,
		CodeNameNotFound,
		CodeShapeNotFound,
		CodeTierNotFound,
		CodeBlueprintNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
