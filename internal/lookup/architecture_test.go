package lookup

import (
	"testing"

	"loanlocator/testutil"
)

func TestLookupStaysPure(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".",
		testutil.AnyOf(testutil.InternalImportForbidden, testutil.ThirdPartyImportForbidden),
		"the lookup engine depends only on the domain and the standard library")
}
