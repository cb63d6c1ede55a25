package usecase

import (
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// ResolveVersion decides the version to publish from the configured base version
// and the latest published release. A base version above the latest release wins;
// otherwise the latest release's patch number is incremented. A missing or
// non-semver latest release leaves the base version as is.
func ResolveVersion(baseVersion string, latest *model.ReleaseReference) (model.Version, error) {
	base, err := model.ParseVersion(baseVersion)
	if err != nil {
		return model.Version{}, goerr.Wrap(model.ErrInvalidBaseVersion, err.Error(),
			goerr.V("base_version", baseVersion))
	}

	if latest == nil || latest.Version == nil {
		return base, nil
	}

	if base.GreaterThan(*latest.Version) {
		return base, nil
	}

	return latest.Version.NextPatch(), nil
}
