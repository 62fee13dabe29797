package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docliq/booking-engine/internal/config"
	"github.com/docliq/booking-engine/internal/directory"
	"github.com/docliq/booking-engine/internal/storage"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"Otolaryngology",
}

var cities = []string{"Berlin", "Hamburg", "Munich", "Cologne", "Frankfurt"}

var languages = []string{"de", "en", "tr", "fr", "pl"}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("service", "seed").Logger()
	log.Info().Msg("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR or REDIS_URL is required to seed durable fixtures")
	}

	store, err := storage.NewRedisStore(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer store.Close()
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	gofakeit.Seed(time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doctors := seedDoctors(60)
	if err := store.Set(ctx, directory.DoctorsKey(), doctors); err != nil {
		log.Fatal().Err(err).Msg("seed doctors")
	}
	log.Info().Int("count", len(doctors)).Msg("doctors seeded")

	patients := seedPatients(20)
	if err := store.Set(ctx, directory.PatientsKey(), patients); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	log.Info().Int("count", len(patients)).Msg("patients seeded")

	log.Info().Msg("seed complete")
}

func seedDoctors(count int) []directory.Doctor {
	out := make([]directory.Doctor, 0, count)
	for i := 0; i < count; i++ {
		minutes := 30
		if gofakeit.Bool() {
			minutes = 15
		}
		langs := []string{"de"}
		if gofakeit.Bool() {
			langs = append(langs, languages[gofakeit.Number(1, len(languages)-1)])
		}
		out = append(out, directory.Doctor{
			ID:            uuid.NewString(),
			Name:          fmt.Sprintf("Dr. %s", gofakeit.Name()),
			Specialty:     specialties[gofakeit.Number(0, len(specialties)-1)],
			City:          cities[gofakeit.Number(0, len(cities)-1)],
			DistanceKm:    math.Round(gofakeit.Float64Range(0.3, 24)*10) / 10,
			Rating:        math.Round(gofakeit.Float64Range(3.0, 5.0)*10) / 10,
			Languages:     langs,
			VideoConsult:  gofakeit.Bool(),
			AcceptsPublic: gofakeit.Number(0, 9) < 8,
			SlotMinutes:   minutes,
		})
	}
	return out
}

func seedPatients(count int) []directory.PatientProfile {
	out := make([]directory.PatientProfile, 0, count)
	for i := 0; i < count; i++ {
		insurance := directory.InsurancePublic
		if gofakeit.Number(0, 9) < 2 {
			insurance = directory.InsurancePrivate
		}
		out = append(out, directory.PatientProfile{
			ID:        uuid.NewString(),
			Name:      gofakeit.Name(),
			Insurance: insurance,
		})
	}
	return out
}
