package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// Device carries the handles produced by instance and device bring-up.
// The backend does not own them; whoever created the instance tears them
// down after the backend shuts down.
type Device struct {
	PhysicalDevice      vk.PhysicalDevice
	LogicalDevice       vk.Device
	GraphicsQueue       vk.Queue
	PresentQueue        vk.Queue
	GraphicsQueueIndex  int32
	PresentQueueIndex   int32
	GraphicsCommandPool vk.CommandPool
	DepthFormat         vk.Format
	SwapchainSupport    SwapchainSupportInfo
}

type SwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// QuerySwapchainSupport refreshes supportInfo from the surface. Surface
// capabilities go stale the moment the window changes, so this runs on
// every surface build, not just bring-up.
func QuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *SwapchainSupportInfo) error {
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); !ResultIsSuccess(res) {
		return fmt.Errorf("query surface capabilities failed: %s", ResultString(res))
	}
	supportInfo.Capabilities.Deref()

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); !ResultIsSuccess(res) {
		return fmt.Errorf("query surface format count failed: %s", ResultString(res))
	}
	if formatCount > 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, supportInfo.Formats); !ResultIsSuccess(res) {
			return fmt.Errorf("query surface formats failed: %s", ResultString(res))
		}
	}

	var presentModeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, nil); !ResultIsSuccess(res) {
		return fmt.Errorf("query present mode count failed: %s", ResultString(res))
	}
	if presentModeCount > 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, presentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, supportInfo.PresentModes); !ResultIsSuccess(res) {
			return fmt.Errorf("query present modes failed: %s", ResultString(res))
		}
	}
	return nil
}

// Context is the state shared by every object in this package: the
// device, the presentation surface and whatever swapchain currently
// backs it.
type Context struct {
	Device    *Device
	Surface   vk.Surface
	Allocator *vk.AllocationCallbacks

	Swapchain      *Swapchain
	MainRenderpass *Renderpass

	FramebufferWidth  uint32
	FramebufferHeight uint32
}

func (c *Context) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(c.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if typeFilter&(1<<i) != 0 &&
			memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags == propertyFlags {
			return int32(i)
		}
	}
	return -1
}
