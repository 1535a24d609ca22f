package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/lumengine/lumen/engine/core"
	enginemath "github.com/lumengine/lumen/engine/math"
)

type Swapchain struct {
	ImageFormat vk.SurfaceFormat
	Handle      vk.Swapchain
	ImageCount  uint32
	Images      []vk.Image
	Views       []vk.ImageView

	DepthAttachment *Image

	// Framebuffers for on-screen rendering, one per swapchain image.
	Framebuffers []*Framebuffer
}

// selectSwapchainExtent picks the framebuffer extent from freshly queried
// capabilities. A CurrentExtent width of MaxUint32 means the surface takes
// whatever size the swapchain declares, so the requested size wins there;
// otherwise the surface dictates. Either way the result is clamped to what
// the device allows.
func selectSwapchainExtent(requested vk.Extent2D, caps vk.SurfaceCapabilities) vk.Extent2D {
	extent := requested
	if caps.CurrentExtent.Width != math.MaxUint32 {
		extent = caps.CurrentExtent
	}
	extent.Width = enginemath.Clamp(extent.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width)
	extent.Height = enginemath.Clamp(extent.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)
	return extent
}

// selectSwapchainImageCount asks for one image over the minimum, capped by
// the device maximum when there is one.
func selectSwapchainImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// SwapchainCreate builds a swapchain against the surface in context. The
// caller destroys any previous swapchain first; this package never
// recreates behind the scheduler's back.
func SwapchainCreate(context *Context, width, height uint32) (*Swapchain, error) {
	swapchain := &Swapchain{}

	swapchainExtent := vk.Extent2D{
		Width:  width,
		Height: height,
	}

	support := &context.Device.SwapchainSupport

	// Preferred format, falling back to whatever the surface offers first.
	found := false
	for _, format := range support.Formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			swapchain.ImageFormat = format
			found = true
			break
		}
	}
	if !found {
		if len(support.Formats) == 0 {
			return nil, fmt.Errorf("surface reports no formats")
		}
		swapchain.ImageFormat = support.Formats[0]
	}

	presentMode := vk.PresentModeFifo
	for _, mode := range support.PresentModes {
		if mode == vk.PresentModeMailbox {
			presentMode = mode
			break
		}
	}

	support.Capabilities.Deref()
	swapchainExtent = selectSwapchainExtent(swapchainExtent, support.Capabilities)
	imageCount := selectSwapchainImageCount(support.Capabilities)

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
	}

	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		queueFamilyIndices := []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = queueFamilyIndices
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	swapchainCreateInfo.PreTransform = support.Capabilities.CurrentTransform
	swapchainCreateInfo.CompositeAlpha = vk.CompositeAlphaOpaqueBit
	swapchainCreateInfo.PresentMode = presentMode
	swapchainCreateInfo.Clipped = vk.True
	swapchainCreateInfo.OldSwapchain = nil

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		return nil, fmt.Errorf("failed to create swapchain: %s", ResultString(res))
	}
	swapchain.Handle = swapchainHandle

	swapchain.ImageCount = 0
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		return nil, fmt.Errorf("failed to count swapchain images: %s", ResultString(res))
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		return nil, fmt.Errorf("failed to get swapchain images: %s", ResultString(res))
	}

	for i := 0; i < int(swapchain.ImageCount); i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			return nil, fmt.Errorf("failed to create swapchain image view: %s", ResultString(res))
		}
	}

	depthAttachment, err := ImageCreate(
		context,
		vk.ImageType2d,
		swapchainExtent.Width,
		swapchainExtent.Height,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return nil, err
	}
	swapchain.DepthAttachment = depthAttachment

	core.LogInfo("swapchain created: %dx%d, %d images", swapchainExtent.Width, swapchainExtent.Height, swapchain.ImageCount)
	return swapchain, nil
}

// AcquireNextImageIndex maps a stale surface to core.ErrSurfaceOutOfDate
// so the scheduler can run its rebuild path; suboptimal still presents
// fine and is treated as success.
func (s *Swapchain) AcquireNextImageIndex(context *Context, timeoutNs uint64, imageAvailableSemaphore vk.Semaphore, fence vk.Fence) (uint32, error) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, s.Handle, timeoutNs, imageAvailableSemaphore, fence, &imageIndex)
	switch result {
	case vk.Success, vk.Suboptimal:
		return imageIndex, nil
	case vk.ErrorOutOfDate:
		return 0, core.ErrSurfaceOutOfDate
	case vk.ErrorDeviceLost:
		return 0, core.ErrDeviceLost
	default:
		return 0, fmt.Errorf("failed to acquire swapchain image: %s", ResultString(result))
	}
}

// Present returns core.ErrSurfaceOutOfDate for both out-of-date and
// suboptimal results; either way the surface gets rebuilt before the
// next acquire.
func (s *Swapchain) Present(context *Context, presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{s.Handle},
		PImageIndices:      []uint32{presentImageIndex},
	}

	result := vk.QueuePresent(presentQueue, &presentInfo)
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return core.ErrSurfaceOutOfDate
	case vk.ErrorDeviceLost:
		return core.ErrDeviceLost
	default:
		return fmt.Errorf("failed to present swapchain image: %s", ResultString(result))
	}
}

func (s *Swapchain) Destroy(context *Context) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)
	if s.DepthAttachment != nil {
		s.DepthAttachment.Destroy(context)
	}
	// Views only; the images belong to the swapchain and die with it.
	for i := 0; i < int(s.ImageCount); i++ {
		vk.DestroyImageView(context.Device.LogicalDevice, s.Views[i], context.Allocator)
	}
	vk.DestroySwapchain(context.Device.LogicalDevice, s.Handle, context.Allocator)
	s.Handle = nil
}
