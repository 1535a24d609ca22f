package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumengine/lumen/engine/renderer/metadata"
)

func TestResultString(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", ResultString(vk.Success))
	assert.Equal(t, "VK_ERROR_OUT_OF_DATE_KHR", ResultString(vk.ErrorOutOfDate))
	assert.Equal(t, "VK_ERROR_DEVICE_LOST", ResultString(vk.ErrorDeviceLost))
	assert.Equal(t, "VK_RESULT_42", ResultString(vk.Result(42)))
}

func TestResultIsSuccess(t *testing.T) {
	assert.True(t, ResultIsSuccess(vk.Success))
	assert.True(t, ResultIsSuccess(vk.Suboptimal))
	assert.False(t, ResultIsSuccess(vk.ErrorOutOfDate))
	assert.False(t, ResultIsSuccess(vk.ErrorDeviceLost))
}

func TestVulkanFormat(t *testing.T) {
	tests := []struct {
		in   metadata.TextureFormat
		want vk.Format
	}{
		{metadata.TextureFormatRGBA8, vk.FormatR8g8b8a8Unorm},
		{metadata.TextureFormatSRGBA8, vk.FormatR8g8b8a8Srgb},
		{metadata.TextureFormatRGBA16F, vk.FormatR16g16b16a16Sfloat},
		{metadata.TextureFormatRGBA32F, vk.FormatR32g32b32a32Sfloat},
		{metadata.TextureFormatDepth24Stencil8, vk.FormatD24UnormS8Uint},
		{metadata.TextureFormatDepth32F, vk.FormatD32Sfloat},
		{metadata.TextureFormatUnknown, vk.FormatUndefined},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VulkanFormat(tt.in))
	}
}

func TestNewBackendClampsFramesInFlight(t *testing.T) {
	for in, want := range map[int]int{0: 2, 1: 2, 2: 2, 3: 3, 8: 3} {
		b, err := NewBackend(&Device{}, vk.NullSurface, in)
		require.NoError(t, err)
		assert.Equal(t, want, b.FramesInFlight(), "requested %d", in)
	}
}

func TestSelectSwapchainExtent(t *testing.T) {
	caps := func(current, min, max vk.Extent2D) vk.SurfaceCapabilities {
		return vk.SurfaceCapabilities{
			CurrentExtent:  current,
			MinImageExtent: min,
			MaxImageExtent: max,
		}
	}
	free := vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	min := vk.Extent2D{Width: 1, Height: 1}
	max := vk.Extent2D{Width: 4096, Height: 4096}

	// The surface dictates when it reports a concrete extent. A resize
	// from 800x600 must land on the new size, not the bring-up one.
	got := selectSwapchainExtent(vk.Extent2D{Width: 800, Height: 600},
		caps(vk.Extent2D{Width: 1920, Height: 1080}, min, max))
	assert.Equal(t, vk.Extent2D{Width: 1920, Height: 1080}, got)

	// MaxUint32 means the swapchain picks, so the requested size wins.
	got = selectSwapchainExtent(vk.Extent2D{Width: 800, Height: 600}, caps(free, min, max))
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, got)

	// Requested sizes outside the device limits get clamped.
	got = selectSwapchainExtent(vk.Extent2D{Width: 9000, Height: 0}, caps(free, min, max))
	assert.Equal(t, vk.Extent2D{Width: 4096, Height: 1}, got)
}

func TestSelectSwapchainImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), selectSwapchainImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), selectSwapchainImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
	// MaxImageCount of zero means no upper bound.
	assert.Equal(t, uint32(4), selectSwapchainImageCount(vk.SurfaceCapabilities{MinImageCount: 3, MaxImageCount: 0}))
}
