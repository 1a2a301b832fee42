package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// roomStubDB routes the three room query shapes to canned answers.
func roomStubDB(latest map[string]float64, daily map[string]float64, inBand, total float64) *stubDB {
	return &stubDB{
		ready: true,
		fn: func(flux string) ([]map[string]interface{}, error) {
			field := "temperature"
			if strings.Contains(flux, `"humidity"`) {
				field = "humidity"
			}
			switch {
			case strings.Contains(flux, "in_band"):
				return []map[string]interface{}{
					{"result": "in_band", "_value": inBand},
					{"result": "total", "_value": total},
				}, nil
			case strings.Contains(flux, "last()"):
				v, ok := latest[field]
				if !ok {
					return nil, nil
				}
				return []map[string]interface{}{{"_value": v}}, nil
			default:
				v, ok := daily[field]
				if !ok {
					return nil, nil
				}
				return []map[string]interface{}{{"_value": v}}, nil
			}
		},
	}
}

func newTestRoomService(db Database) IRoomService {
	automation := NewAutomationService(context.Background(), nil)
	return NewRoomService(db, "sensor_data_primary", automation, StaticDeviceProvider{})
}

func TestRoomServiceListRooms(t *testing.T) {
	svc := newTestRoomService(fixedRecords(nil))

	rooms := svc.ListRooms()
	assert.Len(t, rooms, 12)
	assert.Equal(t, "F2", rooms[0].ID)
	assert.Equal(t, "Ruang F2", rooms[0].Name)
	assert.Equal(t, "F", rooms[0].Floor)
	assert.Equal(t, "G8", rooms[len(rooms)-1].ID)
	assert.Equal(t, 40.0, rooms[len(rooms)-1].Area)
}

func TestRoomServiceUnknownRoom(t *testing.T) {
	svc := newTestRoomService(fixedRecords(nil))

	_, err := svc.GetRoomDetails(context.Background(), "Z9")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.CurrentConditions(context.Background(), "Z9")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomServiceDetails(t *testing.T) {
	db := roomStubDB(
		map[string]float64{"temperature": 23.44, "humidity": 56.91},
		map[string]float64{"temperature": 23.0, "humidity": 55.2},
		90, 100,
	)
	svc := newTestRoomService(db)

	details, err := svc.GetRoomDetails(context.Background(), "F3")
	assert.NoError(t, err)
	assert.Equal(t, "Ruang F3", details.Name)

	if assert.NotNil(t, details.CurrentConditions.Temperature) {
		assert.Equal(t, 23.4, *details.CurrentConditions.Temperature)
	}
	if assert.NotNil(t, details.CurrentConditions.Humidity) {
		assert.Equal(t, 56.9, *details.CurrentConditions.Humidity)
	}
	if assert.NotNil(t, details.Statistics.DailyAvg.Temperature) {
		assert.Equal(t, 23.0, *details.Statistics.DailyAvg.Temperature)
	}
	if assert.NotNil(t, details.Statistics.TimeInOptimalRange.Temperature) {
		assert.Equal(t, 90.0, *details.Statistics.TimeInOptimalRange.Temperature)
	}

	// F3 has an odd trailing digit: AC and dehumidifier, no fan.
	assert.Len(t, details.Devices, 2)
	assert.Equal(t, "ac-f3", details.Devices[0].ID)
}

func TestRoomServiceEvenRoomGetsFan(t *testing.T) {
	devices, err := StaticDeviceProvider{}.RoomDevices(context.Background(), "G4")
	assert.NoError(t, err)
	if assert.Len(t, devices, 3) {
		assert.Equal(t, "fan-g4", devices[2].ID)
	}
}

func TestRoomServiceSparseDataYieldsNils(t *testing.T) {
	db := roomStubDB(nil, nil, 0, 0)
	svc := newTestRoomService(db)

	details, err := svc.GetRoomDetails(context.Background(), "G7")
	assert.NoError(t, err)
	assert.Nil(t, details.CurrentConditions.Temperature)
	assert.Nil(t, details.CurrentConditions.Humidity)
	assert.Nil(t, details.Statistics.DailyAvg.Temperature)
	assert.Nil(t, details.Statistics.TimeInOptimalRange.Temperature)
	assert.Nil(t, details.Statistics.TimeInOptimalRange.Humidity)
}

func TestRoomServiceQueryErrorPropagates(t *testing.T) {
	db := &stubDB{fn: func(string) ([]map[string]interface{}, error) {
		return nil, errors.New("influx unavailable")
	}}
	svc := newTestRoomService(db)

	_, err := svc.CurrentConditions(context.Background(), "F2")
	assert.Error(t, err)
}
