package queries_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/kernel"
)

func Test_GetDeliveryQuery(t *testing.T) {
	t.Run("valid_query", func(t *testing.T) {
		id := kernel.NewUUID()

		q, err := queries.NewGetDeliveryQuery(id)

		require.NoError(t, err)
		require.NoError(t, q.Validate())
		assert.True(t, q.DeliveryID().IsEqual(id))
	})

	t.Run("rejects_empty_id", func(t *testing.T) {
		_, err := queries.NewGetDeliveryQuery(kernel.UUID{})

		assert.Error(t, err)
	})

	t.Run("zero_value_fails_validation", func(t *testing.T) {
		var q queries.GetDeliveryQuery

		assert.ErrorIs(t, q.Validate(), queries.ErrGetDeliveryQueryIsNotConstructed)
	})
}

func Test_GetActiveDeliveriesQuery(t *testing.T) {
	t.Run("constructed_query_is_valid", func(t *testing.T) {
		q := queries.NewGetActiveDeliveriesQuery()

		assert.NoError(t, q.Validate())
	})

	t.Run("zero_value_fails_validation", func(t *testing.T) {
		var q queries.GetActiveDeliveriesQuery

		assert.ErrorIs(t, q.Validate(), queries.ErrGetActiveDeliveriesQueryIsNotConstructed)
	})
}
