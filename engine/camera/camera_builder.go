package camera

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithPose sets the initial pose.
//
// Parameters:
//   - pose: the initial pose
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's pose
func WithPose(pose Pose) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.pose = pose
	}
}

// WithDistanceBounds sets the allowed dolly range.
//
// Parameters:
//   - min: closest allowed distance to the pivot
//   - max: farthest allowed distance to the pivot
//
// Returns:
//   - CameraBuilderOption: functional option to set the distance bounds
func WithDistanceBounds(min, max float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.minDistance = min
		c.maxDistance = max
	}
}

// WithElevationBounds sets the allowed elevation range in radians.
//
// Parameters:
//   - min: lowest elevation
//   - max: highest elevation
//
// Returns:
//   - CameraBuilderOption: functional option to set the elevation bounds
func WithElevationBounds(min, max float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.minElevation = min
		c.maxElevation = max
	}
}
