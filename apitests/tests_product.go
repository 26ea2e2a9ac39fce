package apitests

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/storefront-qa/api-contract-tests/fixtures"
	"github.com/storefront-qa/api-contract-tests/servicedef"
	"github.com/storefront-qa/api-contract-tests/verify"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stretchr/testify/require"
)

// productRow is one scenario of the product tables. The id is sent as part of the body; the
// service assigns its own.
type productRow struct {
	role          servicedef.Role
	id            ldvalue.OptionalInt
	name          string
	description   string
	price         float64
	expectedField string
	expectedMsg   string
}

func (r productRow) product() servicedef.Product {
	return servicedef.Product{ID: r.id, Name: r.name, Description: r.description, Price: r.price}
}

func (r productRow) String() string {
	return fmt.Sprintf("as %s: name=%q, description=%q, price=%v", r.role, r.name, r.description, r.price)
}

var validProducts = []productRow{
	{role: servicedef.RoleAdmin, name: "Laptop", description: "A portable computer", price: 999.99},
	{role: servicedef.RoleUser, name: "Mouse", description: "Wireless mouse", price: 25.5},
	{role: servicedef.RoleUser, id: ldvalue.NewOptionalInt(1000), name: "Cable", description: "USB-C cable, 2m", price: 0.01},
}

var invalidProducts = []productRow{
	{role: servicedef.RoleUser, name: "", description: "SomeDescription", price: 51,
		expectedField: "name", expectedMsg: "name must not be blank."},
	{role: servicedef.RoleUser, name: "SomeName", description: "", price: 51,
		expectedField: "description", expectedMsg: "description must not be blank."},
	{role: servicedef.RoleUser, name: "SomeName", description: "SomeDescription", price: 0,
		expectedField: "price", expectedMsg: "price must be greater than 0."},
	{role: servicedef.RoleUser, name: "SomeName", description: "SomeDescription", price: -10,
		expectedField: "price", expectedMsg: "price must be greater than 0."},
	{role: servicedef.RoleUser, id: ldvalue.NewOptionalInt(1), name: strings.Repeat("n", 101), description: "SomeDescription", price: 51,
		expectedField: "name", expectedMsg: "name must be at most 100 characters long."},
}

// deleteRows pairs a role with the statuses a delete by that role may get. "guest" has no
// session, so its request carries no token.
var deleteRows = []struct {
	role     servicedef.Role
	statuses []int
}{
	{servicedef.RoleAdmin, []int{200, 204}},
	{servicedef.RoleUser, []int{200, 204}},
	{"guest", []int{401}},
}

func DoProductTests(t *T) {
	t.WithCleanProducts()

	t.Run("create without token", func(t *T) {
		resp, err := t.Request(servicedef.ProductPath).
			WithJSONBody(servicedef.Product{}).
			Post(t.Ctx(), "")
		require.NoError(t, err)
		verify.Status(t, resp, 401)
		verify.EmptyBody(t, resp)
	})

	t.Run("create with invalid token", func(t *T) {
		resp, err := t.Request(servicedef.ProductPath).
			WithAuthorization("Bearer invalidToken").
			WithJSONBody(servicedef.Product{}).
			Post(t.Ctx(), "")
		require.NoError(t, err)
		verify.Status(t, resp, 401)
		verify.EmptyBody(t, resp)
	})

	t.Run("create valid", func(t *T) {
		for _, row := range validProducts {
			t.Run(row.String(), func(t *T) {
				resp, err := t.RequestAs(row.role, servicedef.ProductPath).
					WithJSONBody(row.product()).
					Post(t.Ctx(), "")
				require.NoError(t, err)
				verify.Status(t, resp, 200)
				t.Schemas().Match(t, resp, "product/product")
				verify.EntityEquals(t, row.product(), resp, false)
			})
		}
	})

	t.Run("create invalid", func(t *T) {
		for _, row := range invalidProducts {
			t.Run(row.String(), func(t *T) {
				resp, err := t.RequestAs(row.role, servicedef.ProductPath).
					WithJSONBody(row.product()).
					Post(t.Ctx(), "")
				require.NoError(t, err)
				verify.Status(t, resp, 400)
				t.Schemas().Match(t, resp, "product/product_invalid")
				verify.FieldError(t, resp, 400, "Bad Request", row.expectedField, row.expectedMsg)
			})
		}
	})

	t.Run("list", func(t *T) {
		created := t.SeedProduct(fixtures.GenericProduct())
		resp, err := t.RequestAs(servicedef.RoleUser, servicedef.ProductPath).Get(t.Ctx(), "")
		require.NoError(t, err)
		verify.Status(t, resp, 200)
		t.Schemas().Match(t, resp, "product/product_list")

		ids, err := resp.Search(fmt.Sprintf("[?id == `%d`].id", created.ID.IntValue()))
		require.NoError(t, err)
		require.Len(t, ids, 1, "created product %s is not listed", created)
	})

	t.Run("delete", func(t *T) {
		for _, row := range deleteRows {
			t.Run("as "+string(row.role), func(t *T) {
				product := t.SeedProduct(fixtures.GenericProduct())
				resp, err := t.RequestAs(row.role, servicedef.ProductPath).
					Delete(t.Ctx(), strconv.Itoa(product.ID.IntValue()))
				require.NoError(t, err)
				verify.StatusIn(t, resp, row.statuses...)
				verify.EmptyBody(t, resp)
			})
		}
	})

	t.Run("delete non-existent", func(t *T) {
		resp, err := t.RequestAs(servicedef.RoleAdmin, servicedef.ProductPath).Get(t.Ctx(), "")
		require.NoError(t, err)
		verify.Status(t, resp, 200)
		maxID, err := resp.Search("max([].id)")
		require.NoError(t, err)
		id := 1
		if n, ok := maxID.(float64); ok {
			id = int(n) + 1
		}

		resp, err = t.RequestAs(servicedef.RoleAdmin, servicedef.ProductPath).Delete(t.Ctx(), strconv.Itoa(id))
		require.NoError(t, err)
		verify.Status(t, resp, 404)
		verify.ErrorBody(t, resp, 404, "Not Found", fmt.Sprintf("Product with id=%d was not found.", id))
	})
}
