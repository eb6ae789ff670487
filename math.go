package vkcube

import (
	"time"
	"unsafe"

	lin "github.com/xlab/linmath"
)

//UniformBufferObject mirrors the vertex shader's uniform block: three column-major mat4s.
type UniformBufferObject struct {
	Model lin.Mat4x4
	View  lin.Mat4x4
	Proj  lin.Mat4x4
}

const uniformBufferSize = int(unsafe.Sizeof(UniformBufferObject{}))

//Bytes aliases the struct memory; the caller copies it before u changes.
func (u *UniformBufferObject) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), uniformBufferSize)
}

// vulkanClip converts GL clip space to Vulkan clip space.
// Vulkan has a topLeft clipSpace with [0, 1] depth range instead of [-1, 1].
var vulkanClip = lin.Mat4x4{
	{1, 0, 0, 0},
	{0, -1, 0, 0},
	{0, 0, 0.5, 0},
	{0, 0, 0.5, 1},
}

// VulkanProjectionMat converts an OpenGL style projection matrix to Vulkan style projection matrix.
//
// linmath outputs projection matrices in GL style clipSpace,
// perform a simple fixup step to change the projection to Vulkan style.
func VulkanProjectionMat(m *lin.Mat4x4, proj *lin.Mat4x4) {
	clip := vulkanClip
	m.Mult(&clip, proj)
}

const (
	spinDegreesPerSecond = 90
	fieldOfView          = 45
	nearPlane            = 0.1
	farPlane             = 10
)

var (
	cameraEye    = lin.Vec3{2, 2, 2}
	cameraCenter = lin.Vec3{0, 0, 0}
	cameraUp     = lin.Vec3{0, 0, 1}
)

//ComputeUniforms spins the cuboid about Z proportionally to elapsed and looks at it from a
//fixed camera with a projection fitted to width/height.
func ComputeUniforms(elapsed time.Duration, width, height uint32) UniformBufferObject {
	var ubo UniformBufferObject

	var identity lin.Mat4x4
	identity.Identity()
	angle := lin.DegreesToRadians(float32(elapsed.Seconds() * spinDegreesPerSecond))
	ubo.Model.Rotate(&identity, 0, 0, 1, angle)

	eye, center, up := cameraEye, cameraCenter, cameraUp
	ubo.View.LookAt(&eye, &center, &up)

	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	var proj lin.Mat4x4
	proj.Perspective(lin.DegreesToRadians(fieldOfView), aspect, nearPlane, farPlane)
	VulkanProjectionMat(&ubo.Proj, &proj)
	return ubo
}
