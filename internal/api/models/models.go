package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2025-06-15 14:30" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"a1b2c3d4" doc:"Unique build identifier"`
	GoVersion string `json:"go_version" example:"go1.23.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Compiler used"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Frame capture models
type FrameData struct {
	DeviceID  string `json:"device_id" example:"usb-046d_HD_Pro_Webcam-video-index0" doc:"Stable device identifier"`
	Width     uint32 `json:"width" example:"640" doc:"Frame width in pixels"`
	Height    uint32 `json:"height" example:"480" doc:"Frame height in pixels"`
	Format    string `json:"format" example:"png" doc:"Image encoding of the payload"`
	Image     string `json:"image" doc:"Base64-encoded grayscale image"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Capture timestamp"`
}

type FrameResponse struct {
	Body FrameData
}

// Error response
type ErrorData struct {
	Status  string `json:"status" example:"error" doc:"Error status"`
	Message string `json:"message" example:"Device not found" doc:"Error message"`
}

type ErrorResponse struct {
	Body ErrorData
}
