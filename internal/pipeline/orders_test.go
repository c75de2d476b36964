package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zinoono/evemarket/internal/esi"
	"github.com/zinoono/evemarket/internal/model"
)

// fakeOrderStore mimics insert-ignore upsert plus closure detection in
// memory. Orders are "scoped" to the region via the systems map.
type fakeOrderStore struct {
	mu        sync.Mutex
	orders    map[int64]*model.MarketOrder
	systems   map[int64]int64 // system id -> region id
	insertErr error
	sequence  []string
}

func newFakeOrderStore(systems map[int64]int64) *fakeOrderStore {
	return &fakeOrderStore{
		orders:  make(map[int64]*model.MarketOrder),
		systems: systems,
	}
}

func (s *fakeOrderStore) InsertActive(ctx context.Context, orders []model.MarketOrder, batchSize int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence = append(s.sequence, "insert")
	if s.insertErr != nil {
		return 0, s.insertErr
	}

	inserted := 0
	for _, o := range orders {
		if _, exists := s.orders[o.OrderID]; exists {
			continue
		}
		cp := o
		s.orders[o.OrderID] = &cp
		inserted++
	}
	return inserted, nil
}

func (s *fakeOrderStore) DeactivateMissing(ctx context.Context, regionID int64, seenIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequence = append(s.sequence, "deactivate")

	seen := make(map[int64]bool, len(seenIDs))
	for _, id := range seenIDs {
		seen[id] = true
	}

	var closed int64
	for id, o := range s.orders {
		if !o.Active || seen[id] {
			continue
		}
		if s.systems[o.SystemID] != regionID {
			continue
		}
		o.Active = false
		closed++
	}
	return closed, nil
}

func (s *fakeOrderStore) active(orderID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	return ok && o.Active
}

func orderItem(orderID, typeID, systemID int64) esi.MarketOrderItem {
	return esi.MarketOrderItem{
		OrderID:      orderID,
		TypeID:       typeID,
		SystemID:     systemID,
		Issued:       time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC),
		Duration:     90,
		VolumeRemain: 10,
		VolumeTotal:  10,
		Price:        5.05,
	}
}

func TestOrderRun_ClosureDetection(t *testing.T) {
	const region = int64(10000002)
	systems := map[int64]int64{
		30000142: region,
		30002187: 10000043, // another region's system
	}
	store := newFakeOrderStore(systems)

	// Seed prior state: A, B, C active in our region, X active elsewhere.
	seedClient := &fakeClient{orders: []esi.MarketOrderItem{
		orderItem(1, 34, 30000142), // A
		orderItem(2, 34, 30000142), // B
		orderItem(3, 35, 30000142), // C
	}}
	p := NewOrderPipeline(seedClient, store, tradeable(34, 35), 1000, nil)
	if err := p.Run(context.Background(), region); err != nil {
		t.Fatalf("seed run failed: %v", err)
	}
	otherRegion := model.MarketOrder{OrderID: 99, ItemID: 34, SystemID: 30002187, Active: true}
	if _, err := store.InsertActive(context.Background(), []model.MarketOrder{otherRegion}, 1000); err != nil {
		t.Fatal(err)
	}

	// New fetch returns only A and C: B must close, A and C stay open,
	// and the other region's order is never touched.
	client := &fakeClient{orders: []esi.MarketOrderItem{
		orderItem(1, 34, 30000142),
		orderItem(3, 35, 30000142),
	}}
	p = NewOrderPipeline(client, store, tradeable(34, 35), 1000, nil)
	if err := p.Run(context.Background(), region); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !store.active(1) || !store.active(3) {
		t.Error("orders present in the fetch must remain active")
	}
	if store.active(2) {
		t.Error("order absent from the fetch must be deactivated")
	}
	if !store.active(99) {
		t.Error("orders outside the region's systems must never be touched")
	}
}

func TestOrderRun_TradeableFilter(t *testing.T) {
	const region = int64(10000002)
	store := newFakeOrderStore(map[int64]int64{30000142: region})

	client := &fakeClient{orders: []esi.MarketOrderItem{
		orderItem(1, 34, 30000142),
		orderItem(2, 999, 30000142), // not tradeable
	}}

	p := NewOrderPipeline(client, store, tradeable(34), 1000, nil)
	if err := p.Run(context.Background(), region); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, exists := store.orders[2]; exists {
		t.Error("non-tradeable order must not be persisted")
	}
	if !store.active(1) {
		t.Error("tradeable order must be persisted active")
	}
}

func TestOrderRun_KnownOrderNotOverwritten(t *testing.T) {
	const region = int64(10000002)
	store := newFakeOrderStore(map[int64]int64{30000142: region})

	first := orderItem(1, 34, 30000142)
	first.Price = 5.05

	client := &fakeClient{orders: []esi.MarketOrderItem{first}}
	p := NewOrderPipeline(client, store, tradeable(34), 1000, nil)
	if err := p.Run(context.Background(), region); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Same order reappears with a different price; first-sight fields stick.
	second := first
	second.Price = 9.99
	client = &fakeClient{orders: []esi.MarketOrderItem{second}}
	p = NewOrderPipeline(client, store, tradeable(34), 1000, nil)
	if err := p.Run(context.Background(), region); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if got := store.orders[1].Price; got != 5.05 {
		t.Errorf("Price = %v after re-fetch, want first-sight 5.05", got)
	}
}

func TestOrderRun_DeactivationOnlyAfterUpserts(t *testing.T) {
	const region = int64(10000002)
	store := newFakeOrderStore(map[int64]int64{30000142: region})

	client := &fakeClient{orders: []esi.MarketOrderItem{orderItem(1, 34, 30000142)}}
	p := NewOrderPipeline(client, store, tradeable(34), 1000, nil)
	if err := p.Run(context.Background(), region); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{"insert", "deactivate"}
	if len(store.sequence) != len(want) {
		t.Fatalf("sequence = %v, want %v", store.sequence, want)
	}
	for i := range want {
		if store.sequence[i] != want[i] {
			t.Fatalf("sequence = %v, want %v", store.sequence, want)
		}
	}
}

func TestOrderRun_InsertFailureSkipsDeactivation(t *testing.T) {
	const region = int64(10000002)
	store := newFakeOrderStore(map[int64]int64{30000142: region})
	store.insertErr = errors.New("batch 3 failed")

	client := &fakeClient{orders: []esi.MarketOrderItem{orderItem(1, 34, 30000142)}}
	p := NewOrderPipeline(client, store, tradeable(34), 1000, nil)

	if err := p.Run(context.Background(), region); err == nil {
		t.Fatal("expected run error when upsert fails")
	}

	for _, step := range store.sequence {
		if step == "deactivate" {
			t.Error("deactivation ran despite a failed upsert; open orders would be closed incorrectly")
		}
	}
}

func TestOrderRun_FetchFailureAbortsRun(t *testing.T) {
	const region = int64(10000002)
	store := newFakeOrderStore(map[int64]int64{30000142: region})

	client := &fakeClient{ordersErr: &esi.Error{Kind: esi.KindRateLimited, Status: 420, Path: "/markets/10000002/orders/"}}
	p := NewOrderPipeline(client, store, tradeable(34), 1000, nil)

	err := p.Run(context.Background(), region)
	if !esi.IsRateLimited(err) {
		t.Fatalf("err = %v, want rate limited", err)
	}
	if len(store.sequence) != 0 {
		t.Errorf("store touched during aborted run: %v", store.sequence)
	}
}
