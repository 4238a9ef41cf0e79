package domain_test

import (
	"testing"

	"surveycore/testutil"
)

// The domain model is the shared vocabulary of every store, loader, and
// analyzer; it must not import the pipeline internals or any third-party
// package.
func TestDomainImportBoundaries(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"pkg/domain must not depend on internal packages")
	testutil.AssertNoDirectImports(t, ".", testutil.ThirdPartyImportForbidden,
		"pkg/domain must stay dependency-free")
}
