package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"archive-twin/internal/fluxqueries"
	"archive-twin/internal/models"
)

// ErrRoomNotFound is returned for room ids outside the building layout.
var ErrRoomNotFound = errors.New("room not found")

// roomMetadata is the static building layout: floors F and G of the
// archive building.
var roomMetadata = map[string]models.Room{
	"F2": {ID: "F2", Name: "Ruang F2", Floor: "F", Area: 25},
	"F3": {ID: "F3", Name: "Ruang F3", Floor: "F", Area: 30},
	"F4": {ID: "F4", Name: "Ruang F4", Floor: "F", Area: 35},
	"F5": {ID: "F5", Name: "Ruang F5", Floor: "F", Area: 28},
	"F6": {ID: "F6", Name: "Ruang F6", Floor: "F", Area: 32},
	"G2": {ID: "G2", Name: "Ruang G2", Floor: "G", Area: 25},
	"G3": {ID: "G3", Name: "Ruang G3", Floor: "G", Area: 30},
	"G4": {ID: "G4", Name: "Ruang G4", Floor: "G", Area: 35},
	"G5": {ID: "G5", Name: "Ruang G5", Floor: "G", Area: 28},
	"G6": {ID: "G6", Name: "Ruang G6", Floor: "G", Area: 32},
	"G7": {ID: "G7", Name: "Ruang G7", Floor: "G", Area: 30},
	"G8": {ID: "G8", Name: "Ruang G8", Floor: "G", Area: 40},
}

// DeviceProvider supplies the actuator inventory of a room. The real
// building has no queryable actuators yet, so the default provider is a
// deterministic stub.
type DeviceProvider interface {
	RoomDevices(ctx context.Context, roomID string) ([]models.RoomDevice, error)
}

// StaticDeviceProvider derives a fixed inventory from the room id: every
// room has an AC and a dehumidifier, rooms with an even number also have
// a circulation fan.
type StaticDeviceProvider struct{}

func (StaticDeviceProvider) RoomDevices(_ context.Context, roomID string) ([]models.RoomDevice, error) {
	lower := strings.ToLower(roomID)
	devices := []models.RoomDevice{
		{ID: "ac-" + lower, Name: "AC", Status: "active", SetPoint: 21},
		{ID: "dh-" + lower, Name: "Dehumidifier", Status: "active", SetPoint: 50},
	}
	if last := roomID[len(roomID)-1]; last >= '0' && last <= '9' && (last-'0')%2 == 0 {
		devices = append(devices, models.RoomDevice{ID: "fan-" + lower, Name: "Fan", Status: "active", SetPoint: 1})
	}
	return devices, nil
}

type IRoomService interface {
	ListRooms() []models.Room
	GetRoomDetails(ctx context.Context, roomID string) (models.RoomDetails, error)
	CurrentConditions(ctx context.Context, roomID string) (models.RoomConditions, error)
}

type roomService struct {
	db         Database
	bucket     string
	automation IAutomationService
	devices    DeviceProvider
}

func NewRoomService(db Database, bucket string, automation IAutomationService, devices DeviceProvider) IRoomService {
	return &roomService{db: db, bucket: bucket, automation: automation, devices: devices}
}

func (s *roomService) ListRooms() []models.Room {
	rooms := make([]models.Room, 0, len(roomMetadata))
	for _, room := range roomMetadata {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

func (s *roomService) CurrentConditions(ctx context.Context, roomID string) (models.RoomConditions, error) {
	if _, ok := roomMetadata[roomID]; !ok {
		return models.RoomConditions{}, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	conditions := models.RoomConditions{}
	var err error
	conditions.Temperature, err = s.latestValue(ctx, roomID, "temperature")
	if err != nil {
		return models.RoomConditions{}, err
	}
	conditions.Humidity, err = s.latestValue(ctx, roomID, "humidity")
	if err != nil {
		return models.RoomConditions{}, err
	}
	return conditions, nil
}

func (s *roomService) GetRoomDetails(ctx context.Context, roomID string) (models.RoomDetails, error) {
	room, ok := roomMetadata[roomID]
	if !ok {
		return models.RoomDetails{}, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}

	conditions, err := s.CurrentConditions(ctx, roomID)
	if err != nil {
		return models.RoomDetails{}, err
	}

	dailyAvg := models.RoomConditions{}
	dailyAvg.Temperature, err = s.dailyAverage(ctx, roomID, "temperature")
	if err != nil {
		return models.RoomDetails{}, err
	}
	dailyAvg.Humidity, err = s.dailyAverage(ctx, roomID, "humidity")
	if err != nil {
		return models.RoomDetails{}, err
	}

	settings := s.automation.Get()
	optimal := models.OptimalRange{}
	optimal.Temperature, err = s.optimalPercentage(ctx, roomID, "temperature",
		settings.TargetTemperature-settings.TemperatureTolerance,
		settings.TargetTemperature+settings.TemperatureTolerance)
	if err != nil {
		return models.RoomDetails{}, err
	}
	optimal.Humidity, err = s.optimalPercentage(ctx, roomID, "humidity",
		settings.TargetHumidity-settings.HumidityTolerance,
		settings.TargetHumidity+settings.HumidityTolerance)
	if err != nil {
		return models.RoomDetails{}, err
	}

	devices, err := s.devices.RoomDevices(ctx, roomID)
	if err != nil {
		return models.RoomDetails{}, fmt.Errorf("room devices for %s: %w", roomID, err)
	}

	return models.RoomDetails{
		Room:              room,
		CurrentConditions: conditions,
		Statistics: models.RoomStatistics{
			DailyAvg:           dailyAvg,
			TimeInOptimalRange: optimal,
		},
		Devices: devices,
	}, nil
}

func (s *roomService) latestValue(ctx context.Context, roomID, field string) (*float64, error) {
	records, err := s.db.QueryRecords(ctx, fluxqueries.RoomLatest(s.bucket, roomID, field))
	if err != nil {
		return nil, fmt.Errorf("latest %s for %s: %w", field, roomID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if v, ok := recordFloat(records[0], "_value"); ok {
		return floatPtr(round1(v)), nil
	}
	return nil, nil
}

func (s *roomService) dailyAverage(ctx context.Context, roomID, field string) (*float64, error) {
	records, err := s.db.QueryRecords(ctx, fluxqueries.RoomDailyAverage(s.bucket, roomID, field))
	if err != nil {
		return nil, fmt.Errorf("daily average %s for %s: %w", field, roomID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if v, ok := recordFloat(records[0], "_value"); ok {
		return floatPtr(round1(v)), nil
	}
	return nil, nil
}

// optimalPercentage reports how much of the last 24h was inside the
// operator band. No samples means no answer, not a zero.
func (s *roomService) optimalPercentage(ctx context.Context, roomID, field string, lo, hi float64) (*float64, error) {
	records, err := s.db.QueryRecords(ctx, fluxqueries.RoomBandCounts(s.bucket, roomID, field, lo, hi))
	if err != nil {
		return nil, fmt.Errorf("optimal range %s for %s: %w", field, roomID, err)
	}

	var inBand, total float64
	for _, record := range records {
		v, ok := recordFloat(record, "_value")
		if !ok {
			continue
		}
		switch recordString(record, "result") {
		case "in_band":
			inBand = v
		case "total":
			total = v
		}
	}
	if total == 0 {
		return nil, nil
	}
	return floatPtr(round1(inBand / total * 100)), nil
}
