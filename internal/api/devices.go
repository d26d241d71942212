package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camgrab/internal/api/models"
	"github.com/smazurov/camgrab/internal/devices"
)

// DevicePathInput identifies a device by its stable ID.
type DevicePathInput struct {
	DeviceID string `path:"device_id" example:"usb-046d_HD_Pro_Webcam-video-index0" doc:"Stable device identifier"`
}

// GetDevicesData fetches the list of available video devices.
func GetDevicesData(detector devices.DeviceDetector) (models.DeviceData, error) {
	found, err := detector.FindDevices()
	if err != nil {
		return models.DeviceData{}, err
	}

	return models.DeviceData{
		Devices: found,
		Count:   len(found),
	}, nil
}

// registerDeviceRoutes registers all device-related endpoints.
func (s *Server) registerDeviceRoutes() {
	detector := devices.NewDeviceDetector()

	// List all devices
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List Devices",
		Description: "List all available video capture devices",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(_ context.Context, _ *struct{}) (*models.DeviceResponse, error) {
		data, err := GetDevicesData(detector)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to get devices", err)
		}

		return &models.DeviceResponse{Body: data}, nil
	})

	// Get device formats
	huma.Register(s.api, huma.Operation{
		OperationID: "device-formats",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}/formats",
		Summary:     "Formats",
		Description: "List supported formats for a specific device",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 500},
	}, func(_ context.Context, input *DevicePathInput) (*models.DeviceFormatsResponse, error) {
		devicePath, err := detector.GetDevicePathByID(input.DeviceID)
		if err != nil {
			return nil, huma.Error404NotFound("Device not found", err)
		}

		formats, err := detector.GetDeviceFormats(devicePath)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to get device formats", err)
		}

		return &models.DeviceFormatsResponse{
			Body: models.DeviceFormatsData{
				DeviceID: input.DeviceID,
				Formats:  formats,
			},
		}, nil
	})
}
