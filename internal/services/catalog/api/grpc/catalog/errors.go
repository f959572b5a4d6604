package catalog

import (
	"errors"
	"strings"

	apperrors "github.com/louisbranch/buildbook/internal/platform/errors"
	"github.com/louisbranch/buildbook/internal/services/catalog/domain"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var notFoundCodes = map[string]apperrors.Code{
	domain.IndexCategory:  apperrors.CodeCategoryNotFound,
	domain.IndexName:      apperrors.CodeNameNotFound,
	domain.IndexShape:     apperrors.CodeShapeNotFound,
	domain.IndexTier:      apperrors.CodeTierNotFound,
	domain.IndexBlueprint: apperrors.CodeBlueprintNotFound,
}

// toStatus maps catalog errors to gRPC status errors with ErrorInfo details.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var (
		verr *domain.ValidationError
		nf   *domain.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return apperrors.WrapWithMetadata(apperrors.CodeRequirementsInvalid, verr.Error(), map[string]string{"field": verr.Field}, err).ToGRPCStatus()
	case errors.As(err, &nf):
		code, ok := notFoundCodes[nf.Index]
		if !ok {
			code = apperrors.CodeNotFound
		}
		metadata := map[string]string{"index": nf.Index, "key": nf.Key}
		if len(nf.Suggestions) > 0 {
			metadata["suggestions"] = strings.Join(nf.Suggestions, "|")
		}
		return apperrors.WrapWithMetadata(code, nf.Error(), metadata, err).ToGRPCStatus()
	case errors.Is(err, domain.ErrInvalidSelector):
		return apperrors.Wrap(apperrors.CodeInvalidSelector, err.Error(), err).ToGRPCStatus()
	case errors.Is(err, domain.ErrInvalidBuild):
		return apperrors.Wrap(apperrors.CodeBuildInvalid, err.Error(), err).ToGRPCStatus()
	case errors.Is(err, domain.ErrSealed):
		return apperrors.Wrap(apperrors.CodeCatalogSealed, err.Error(), err).ToGRPCStatus()
	default:
		return status.Errorf(codes.Internal, "catalog: %v", err)
	}
}

func invalidArgument(code apperrors.Code, field, message string) error {
	return apperrors.WrapWithMetadata(code, message, map[string]string{"field": field}, nil).ToGRPCStatus()
}

// Suggestions returns the "did you mean" candidates attached to a NotFound
// status, if any.
func Suggestions(err error) []string {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.NotFound {
		return nil
	}
	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != apperrors.Domain {
			continue
		}
		if raw := info.GetMetadata()["suggestions"]; raw != "" {
			return strings.Split(raw, "|")
		}
	}
	return nil
}
