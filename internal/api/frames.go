package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camgrab/internal/acquire"
	"github.com/smazurov/camgrab/internal/api/models"
	"github.com/smazurov/camgrab/internal/camera"
	"github.com/smazurov/camgrab/internal/capture"
	"github.com/smazurov/camgrab/internal/logging"
)

// registerFrameRoutes registers the one-shot frame capture endpoint.
func (s *Server) registerFrameRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "capture-frame",
		Method:      http.MethodPost,
		Path:        "/api/devices/{device_id}/frame",
		Summary:     "Capture Frame",
		Description: "Acquire the device, read one grayscale frame, and return it as base64 PNG",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 500, 503},
	}, func(_ context.Context, input *DevicePathInput) (*models.FrameResponse, error) {
		mgr := camera.NewManager(logging.GetLogger("camera"))

		result, err := capture.GrabFrame(mgr, capture.Options{
			DeviceID:    input.DeviceID,
			WaitTimeout: s.options.CaptureTimeout,
			EventBus:    s.options.EventBus,
		})
		if err != nil {
			switch acquire.CodeOf(err) {
			case acquire.ErrCodeNoDevicesPresent, acquire.ErrCodeDeviceNotFound:
				return nil, huma.Error404NotFound("Device not found", err)
			case acquire.ErrCodeUnsupportedFormat, acquire.ErrCodeConfigurationRejected:
				return nil, huma.Error503ServiceUnavailable("Device cannot produce a readable stream", err)
			default:
				return nil, huma.Error500InternalServerError("Frame capture failed", err)
			}
		}

		var buf bytes.Buffer
		if err := result.EncodePNG(&buf); err != nil {
			return nil, huma.Error500InternalServerError("Failed to encode frame", err)
		}

		return &models.FrameResponse{
			Body: models.FrameData{
				DeviceID:  input.DeviceID,
				Width:     result.Width,
				Height:    result.Height,
				Format:    "png",
				Image:     base64.StdEncoding.EncodeToString(buf.Bytes()),
				Timestamp: time.Now().Format(time.RFC3339),
			},
		}, nil
	})
}
