package stock

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/inventory"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tx(typ inventory.TransactionType, product, location, destination string, qty int) inventory.Transaction {
	return inventory.Transaction{
		ID:                    product + "-" + location,
		ProductID:             product,
		LocationID:            location,
		DestinationLocationID: destination,
		Type:                  typ,
		Quantity:              qty,
	}
}

func TestAggregateBasicMovements(t *testing.T) {
	levels := Aggregate([]inventory.Transaction{
		tx(inventory.TransactionTypeIn, "p1", "main", "", 10),
		tx(inventory.TransactionTypeOut, "p1", "main", "", 3),
		tx(inventory.TransactionTypeIn, "p2", "shop", "", 5),
	}, discard())

	require.Equal(t, 7, levels.Get("p1", "main"))
	require.Equal(t, 5, levels.Get("p2", "shop"))
	require.Equal(t, 0, levels.Get("p1", "shop"))
}

func TestAggregateTransferConservesTotal(t *testing.T) {
	levels := Aggregate([]inventory.Transaction{
		tx(inventory.TransactionTypeIn, "p1", "main", "", 10),
		tx(inventory.TransactionTypeTransfer, "p1", "main", "shop", 4),
	}, discard())

	require.Equal(t, 6, levels.Get("p1", "main"))
	require.Equal(t, 4, levels.Get("p1", "shop"))
	require.Equal(t, 10, levels.Get("p1", "main")+levels.Get("p1", "shop"))
}

func TestAggregateOrderIndependent(t *testing.T) {
	transactions := []inventory.Transaction{
		tx(inventory.TransactionTypeIn, "p1", "main", "", 20),
		tx(inventory.TransactionTypeOut, "p1", "main", "", 5),
		tx(inventory.TransactionTypeTransfer, "p1", "main", "shop", 8),
		tx(inventory.TransactionTypeIn, "p2", "shop", "", 3),
		tx(inventory.TransactionTypeOut, "p1", "shop", "", 2),
	}
	want := Aggregate(transactions, discard())

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]inventory.Transaction, len(transactions))
		copy(shuffled, transactions)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		require.Equal(t, want, Aggregate(shuffled, discard()))
	}
}

func TestAggregateSkipsMalformed(t *testing.T) {
	levels := Aggregate([]inventory.Transaction{
		tx(inventory.TransactionTypeIn, "", "main", "", 10),
		tx(inventory.TransactionTypeIn, "p1", "", "", 10),
		tx(inventory.TransactionTypeTransfer, "p1", "main", "", 10),
		tx("MYSTERY", "p1", "main", "", 10),
		tx(inventory.TransactionTypeIn, "p1", "main", "", 2),
	}, discard())

	require.Equal(t, Levels{"p1": {"main": 2}}, levels)
}

func TestAggregateCanGoNegative(t *testing.T) {
	levels := Aggregate([]inventory.Transaction{
		tx(inventory.TransactionTypeOut, "p1", "main", "", 5),
	}, discard())
	require.Equal(t, -5, levels.Get("p1", "main"))
}
