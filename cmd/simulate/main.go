package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docliq/booking-engine/internal/booking"
	"github.com/docliq/booking-engine/internal/cache"
	"github.com/docliq/booking-engine/internal/clock"
	"github.com/docliq/booking-engine/internal/config"
	"github.com/docliq/booking-engine/internal/connectivity"
	"github.com/docliq/booking-engine/internal/directory"
	"github.com/docliq/booking-engine/internal/overlay"
	"github.com/docliq/booking-engine/internal/search"
	"github.com/docliq/booking-engine/internal/slots"
	"github.com/docliq/booking-engine/internal/storage"
)

type SimConfig struct {
	Iterations      int
	Seed            int64
	ContentionRate  float64
	OfflineEvery    int
	RescheduleEvery int
	CancelEvery     int
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}
	om.Latencies = append(om.Latencies, latency)
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

type Metrics struct {
	Search        OperationMetrics
	Confirm       OperationMetrics
	Reschedule    OperationMetrics
	Cancel        OperationMetrics
	OfflineReplay OperationMetrics
}

// memSurface is the simulator's stand-in focus surface for sheet journeys.
type memSurface struct {
	active string
	ids    []string
}

func (m *memSurface) ActiveElement() string { return m.active }
func (m *memSurface) Focus(id string)       { m.active = id }
func (m *memSurface) Focusables() []string  { return m.ids }

type Simulator struct {
	simCfg  SimConfig
	log     zerolog.Logger
	rng     *rand.Rand
	clk     clock.Clock
	signal  *connectivity.ManualSignal
	engine  *search.Engine
	svc     *booking.Service
	prefs   *search.Prefs
	lock    *overlay.PageLock
	patient directory.PatientProfile

	lastOnlineOrder []string
	metrics         Metrics
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "simulate").Logger()
	log.Info().Msg("simulate starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	simCfg := SimConfig{
		Iterations:      getInt("SIM_ITERATIONS", 200),
		Seed:            int64(getInt("SIM_SEED", int(time.Now().UnixNano()))),
		ContentionRate:  getFloat("SIM_CONTENTION_RATE", 0.05),
		OfflineEvery:    getInt("SIM_OFFLINE_EVERY", 17),
		RescheduleEvery: getInt("SIM_RESCHEDULE_EVERY", 9),
		CancelEvery:     getInt("SIM_CANCEL_EVERY", 13),
	}

	var durable storage.Store
	if cfg.RedisAddr != "" {
		rs, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection error")
		}
		defer rs.Close()
		durable = rs
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	} else {
		durable = storage.NewMemoryStore()
		log.Info().Msg("no redis configured, running fully in-memory")
	}
	store := storage.NewFallbackStore(durable, log)

	gofakeit.Seed(simCfg.Seed)
	doctors := fixtureDoctors(40)
	patients := fixturePatients(8)
	dir := directory.NewFixtureProvider(doctors, patients)

	ctx := context.Background()
	clk := clock.System()
	signal := connectivity.NewManualSignal(true)
	signal.Subscribe(func(online bool) {
		log.Info().Bool("online", online).Msg("connectivity changed")
	})

	results := cache.NewResultsCache(store, clk, cfg.CacheTTL, log)
	engine := search.NewEngine(dir, results, signal, clk, slots.Params{
		Days:     cfg.SlotDays,
		OpenHour: cfg.SlotOpenHour,
		LastHour: cfg.SlotLastHour,
		Cadence:  cfg.SlotCadence,
	}, log)

	oracle := booking.NewRandomContention(simCfg.Seed, simCfg.ContentionRate)
	bookStore := booking.NewStore(store, clk, log)
	svc := booking.NewService(bookStore, store, oracle, clk, cfg.ReasonMaxLen, log)

	sim := &Simulator{
		simCfg:  simCfg,
		log:     log,
		rng:     rand.New(rand.NewSource(simCfg.Seed)),
		clk:     clk,
		signal:  signal,
		engine:  engine,
		svc:     svc,
		prefs:   search.LoadPrefs(ctx, store),
		lock:    overlay.NewPageLock(),
		patient: patients[0],
	}

	sim.Run(ctx)
	sim.PrintReport(ctx)
}

var queries = []string{"", "cardio", "derma", "hno", "Pediatrics", "gp", "Neuro"}

func (s *Simulator) Run(ctx context.Context) {
	for i := 1; i <= s.simCfg.Iterations; i++ {
		res := s.doSearch(ctx, queries[s.rng.Intn(len(queries))])
		if res == nil || len(res.Visible) == 0 {
			continue
		}

		s.doConfirm(ctx, res)

		if s.simCfg.RescheduleEvery > 0 && i%s.simCfg.RescheduleEvery == 0 {
			s.doReschedule(ctx, res)
		}
		if s.simCfg.CancelEvery > 0 && i%s.simCfg.CancelEvery == 0 {
			s.doCancel(ctx)
		}
		if s.simCfg.OfflineEvery > 0 && i%s.simCfg.OfflineEvery == 0 {
			s.doOfflineReplay(ctx)
		}
	}
}

func (s *Simulator) doSearch(ctx context.Context, query string) *search.Results {
	f := s.prefs.Filters()
	f.Sort = []search.SortKey{search.SortSoonest, search.SortDistance, search.SortRating}[s.rng.Intn(3)]
	f.PublicOnly = s.rng.Intn(4) == 0
	_ = s.prefs.SetFilters(ctx, f)

	start := time.Now()
	res, err := s.engine.Search(ctx, query, "", s.patient, f)
	latency := time.Since(start)

	if err != nil {
		s.metrics.Search.Record(latency, false, false)
		return nil
	}
	s.metrics.Search.Record(latency, true, false)

	if !res.FromCache && !res.Indeterminate {
		s.lastOnlineOrder = doctorOrder(res)
	}
	return res
}

// doConfirm runs the confirmation sheet journey: open, cycle focus, submit.
func (s *Simulator) doConfirm(ctx context.Context, res *search.Results) {
	doctor := res.Visible[s.rng.Intn(len(res.Visible))]
	ss := res.SlotsByDoctor[doctor.ID]
	if len(ss) == 0 {
		return
	}
	slot := ss[s.rng.Intn(len(ss))]

	surface := &memSurface{active: "btn-book", ids: []string{"input-reason", "btn-confirm", "btn-back"}}
	sheet := overlay.New(surface, s.lock, s.clk, overlay.Options{Variant: overlay.VariantBottomSheet})
	sheet.Open()
	sheet.PressTab(false)
	sheet.PressTab(false)

	start := time.Now()
	_, err := s.svc.Confirm(ctx, booking.Selection{
		Doctor:  &doctor,
		Slot:    &slot,
		Patient: &s.patient,
		Reason:  gofakeit.Sentence(4),
	})
	latency := time.Since(start)

	sheet.Close()

	switch {
	case err == nil:
		s.metrics.Confirm.Record(latency, true, false)
	case errors.Is(err, booking.ErrSlotUnavailable):
		s.metrics.Confirm.Record(latency, false, true)
	default:
		s.metrics.Confirm.Record(latency, false, false)
	}
}

func (s *Simulator) doReschedule(ctx context.Context, res *search.Results) {
	target := s.randomConfirmed(ctx)
	if target == nil {
		return
	}

	start := time.Now()
	if err := s.svc.StageReschedule(ctx, target.ID); err != nil {
		s.metrics.Reschedule.Record(time.Since(start), false, false)
		return
	}

	// pick a different slot for the same doctor
	var next *slots.Slot
	for _, candidate := range res.SlotsByDoctor[target.DoctorID] {
		if candidate.ID != target.Slot.ID {
			c := candidate
			next = &c
			break
		}
	}
	if next == nil {
		_ = s.svc.AbandonReschedule(ctx)
		s.metrics.Reschedule.Record(time.Since(start), false, false)
		return
	}

	d := directory.Doctor{ID: target.DoctorID}
	_, cerr := s.svc.Confirm(ctx, booking.Selection{
		Doctor:  &d,
		Slot:    next,
		Patient: &s.patient,
	})
	latency := time.Since(start)

	switch {
	case cerr == nil:
		s.metrics.Reschedule.Record(latency, true, false)
	case errors.Is(cerr, booking.ErrSlotUnavailable):
		_ = s.svc.AbandonReschedule(ctx)
		s.metrics.Reschedule.Record(latency, false, true)
	default:
		_ = s.svc.AbandonReschedule(ctx)
		s.metrics.Reschedule.Record(latency, false, false)
	}
}

// doCancel runs the destructive-action sheet: a blocking biometric check
// precedes the cancellation.
func (s *Simulator) doCancel(ctx context.Context) {
	target := s.randomConfirmed(ctx)
	if target == nil {
		return
	}

	surface := &memSurface{active: "btn-cancel-booking", ids: []string{"btn-keep", "btn-really-cancel"}}
	sheet := overlay.New(surface, s.lock, s.clk, overlay.Options{Variant: overlay.VariantDialog})
	scan := overlay.NewScan(s.clk, sheet, time.Millisecond, time.Millisecond)
	sheet.Open()
	scan.Start(true)

	start := time.Now()
	err := s.svc.Cancel(ctx, target.ID)
	latency := time.Since(start)
	scan.Cancel()
	sheet.Unmount()

	s.metrics.Cancel.Record(latency, err == nil, false)
}

// doOfflineReplay drops connectivity and checks the cached run reproduces
// the last online ordering.
func (s *Simulator) doOfflineReplay(ctx context.Context) {
	s.signal.SetOnline(false)

	start := time.Now()
	res, err := s.engine.Search(ctx, "", "", s.patient, s.prefs.Filters())
	latency := time.Since(start)

	s.signal.SetOnline(true)

	if err != nil || res == nil {
		s.metrics.OfflineReplay.Record(latency, false, false)
		return
	}
	if res.Indeterminate {
		// valid outcome when the cache expired between runs
		s.metrics.OfflineReplay.Record(latency, true, false)
		return
	}

	match := res.FromCache && equalOrder(doctorOrder(res), s.lastOnlineOrder)
	s.metrics.OfflineReplay.Record(latency, match, false)
}

func (s *Simulator) randomConfirmed(ctx context.Context) *booking.Booking {
	all, err := s.svc.Bookings(ctx)
	if err != nil {
		return nil
	}
	var confirmed []booking.Booking
	for _, b := range all {
		if b.Status == booking.StatusConfirmed {
			confirmed = append(confirmed, b)
		}
	}
	if len(confirmed) == 0 {
		return nil
	}
	b := confirmed[s.rng.Intn(len(confirmed))]
	return &b
}

func (s *Simulator) PrintReport(ctx context.Context) {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Iterations: %d\n", s.simCfg.Iterations)
	fmt.Printf("Seed: %d\n", s.simCfg.Seed)
	fmt.Println()

	printOperationReport("Search", &s.metrics.Search)
	printOperationReport("Confirm", &s.metrics.Confirm)
	printOperationReport("Reschedule", &s.metrics.Reschedule)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("Offline replay", &s.metrics.OfflineReplay)

	all, err := s.svc.Bookings(ctx)
	if err == nil {
		byStatus := map[booking.Status]int{}
		for _, b := range all {
			byStatus[b.Status]++
		}
		fmt.Printf("Bookings: total=%d confirmed=%d cancelled=%d completed=%d\n",
			len(all), byStatus[booking.StatusConfirmed], byStatus[booking.StatusCancelled],
			byStatus[booking.StatusCompleted])
	}
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Microsecond), min.Round(time.Microsecond), max.Round(time.Microsecond),
		p50.Round(time.Microsecond), p95.Round(time.Microsecond))
	fmt.Println()
}

// Fixture generation

var simSpecialties = []string{
	"Dermatology", "Cardiology", "General Practice", "Orthopedics",
	"Neurology", "Pediatrics", "Psychiatry", "Otolaryngology",
}

func fixtureDoctors(count int) []directory.Doctor {
	out := make([]directory.Doctor, 0, count)
	for i := 0; i < count; i++ {
		minutes := 30
		if gofakeit.Bool() {
			minutes = 15
		}
		out = append(out, directory.Doctor{
			ID:            uuid.NewString(),
			Name:          fmt.Sprintf("Dr. %s", gofakeit.Name()),
			Specialty:     simSpecialties[gofakeit.Number(0, len(simSpecialties)-1)],
			City:          "Berlin",
			DistanceKm:    math.Round(gofakeit.Float64Range(0.3, 24)*10) / 10,
			Rating:        math.Round(gofakeit.Float64Range(3.0, 5.0)*10) / 10,
			Languages:     []string{"de", "en"},
			VideoConsult:  gofakeit.Bool(),
			AcceptsPublic: gofakeit.Number(0, 9) < 8,
			SlotMinutes:   minutes,
		})
	}
	return out
}

func fixturePatients(count int) []directory.PatientProfile {
	out := make([]directory.PatientProfile, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, directory.PatientProfile{
			ID:        uuid.NewString(),
			Name:      gofakeit.Name(),
			Insurance: directory.InsurancePublic,
		})
	}
	return out
}

// Helpers

func doctorOrder(res *search.Results) []string {
	out := make([]string, len(res.Visible))
	for i, d := range res.Visible {
		out[i] = d.ID
	}
	return out
}

func equalOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
