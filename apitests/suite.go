package apitests

import (
	"github.com/storefront-qa/api-contract-tests/framework"
)

func RunTestSuite(
	env *Environment,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)

		t.Run("token", DoTokenTests)
		t.Run("product", DoProductTests)
		t.Run("user", DoUserTests)
	})
}
