package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"

	"github.com/lumengine/lumen/engine/core"
	"github.com/lumengine/lumen/engine/renderer"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

const (
	minFramesInFlight = 2
	maxFramesInFlight = 3
)

// Backend drives the swapchain and per-slot synchronization for the
// frame scheduler. It assumes instance, surface and device bring-up
// already happened; the Device handed in carries everything it needs.
type Backend struct {
	context        *Context
	framesInFlight int
	surfaceGen     uint64

	imageAvailableSemaphores []vk.Semaphore
	queueCompleteSemaphores  []vk.Semaphore
	inFlightFences           []*Fence
	imagesInFlight           []*Fence

	commandBuffers []*CommandBuffer
	recorders      []*Recorder
}

var _ renderer.SurfaceDevice = (*Backend)(nil)
var _ renderer.TextureAllocator = (*Backend)(nil)

func NewBackend(device *Device, surface vk.Surface, framesInFlight int) (*Backend, error) {
	if framesInFlight < minFramesInFlight {
		framesInFlight = minFramesInFlight
	}
	if framesInFlight > maxFramesInFlight {
		framesInFlight = maxFramesInFlight
	}
	return &Backend{
		context: &Context{
			Device:  device,
			Surface: surface,
		},
		framesInFlight: framesInFlight,
	}, nil
}

func (b *Backend) Context() *Context { return b.context }

func (b *Backend) FramesInFlight() int { return b.framesInFlight }

func (b *Backend) WaitForFrame(slot int) error {
	return b.inFlightFences[slot].Wait(b.context, math.MaxUint64)
}

func (b *Backend) ResetFrame(slot int) error {
	if err := b.inFlightFences[slot].Reset(b.context); err != nil {
		return err
	}
	cb := b.commandBuffers[slot]
	cb.Reset()
	if err := cb.Begin(false, false, false); err != nil {
		return err
	}
	b.recorders[slot].inPass = false
	return nil
}

func (b *Backend) AcquireNextImage(slot int) (uint32, error) {
	imageIndex, err := b.context.Swapchain.AcquireNextImageIndex(
		b.context, math.MaxUint64, b.imageAvailableSemaphores[slot], vk.NullFence)
	if err != nil {
		return 0, err
	}
	b.recorders[slot].imageIndex = imageIndex
	return imageIndex, nil
}

func (b *Backend) Recorder(slot int) renderer.CommandRecorder {
	return b.recorders[slot]
}

func (b *Backend) Submit(slot int, imageIndex uint32) error {
	cb := b.commandBuffers[slot]
	if err := cb.End(); err != nil {
		return err
	}

	// If an earlier frame is still rendering into this image, wait for it.
	if b.imagesInFlight[imageIndex] != nil {
		if err := b.imagesInFlight[imageIndex].Wait(b.context, math.MaxUint64); err != nil {
			return err
		}
	}
	b.imagesInFlight[imageIndex] = b.inFlightFences[slot]

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{b.queueCompleteSemaphores[slot]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{b.imageAvailableSemaphores[slot]},
		// Color writes hold until the acquired image is actually available.
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
	}

	if res := vk.QueueSubmit(b.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, b.inFlightFences[slot].Handle); res != vk.Success {
		return fmt.Errorf("queue submit failed: %s", ResultString(res))
	}
	cb.UpdateSubmitted()
	return nil
}

func (b *Backend) Present(slot int, imageIndex uint32) error {
	return b.context.Swapchain.Present(
		b.context, b.context.Device.PresentQueue, b.queueCompleteSemaphores[slot], imageIndex)
}

func (b *Backend) WaitIdle() error {
	if res := vk.DeviceWaitIdle(b.context.Device.LogicalDevice); !ResultIsSuccess(res) {
		return fmt.Errorf("device wait idle failed: %s", ResultString(res))
	}
	return nil
}

// BuildSurface creates the swapchain and everything sized to it. The
// render pass and per-slot sync objects are created once and survive
// rebuilds; only the swapchain, depth buffer and framebuffers are
// per-surface.
func (b *Backend) BuildSurface(width, height uint32) (*renderer.SurfaceState, error) {
	b.context.FramebufferWidth = width
	b.context.FramebufferHeight = height

	// Requery support. Capabilities cached at bring-up describe the old
	// surface size and transform.
	device := b.context.Device
	if err := QuerySwapchainSupport(device.PhysicalDevice, b.context.Surface, &device.SwapchainSupport); err != nil {
		return nil, err
	}

	swapchain, err := SwapchainCreate(b.context, width, height)
	if err != nil {
		return nil, err
	}
	b.context.Swapchain = swapchain

	if b.context.MainRenderpass == nil {
		renderpass, err := RenderpassCreate(
			b.context,
			swapchain.ImageFormat.Format,
			b.context.Device.DepthFormat,
			0, 0, float32(width), float32(height),
			0.0, 0.0, 0.1, 1.0,
			1.0, 0)
		if err != nil {
			swapchain.Destroy(b.context)
			b.context.Swapchain = nil
			return nil, err
		}
		b.context.MainRenderpass = renderpass
	}

	if err := b.regenerateFramebuffers(); err != nil {
		return nil, err
	}

	if b.inFlightFences == nil {
		if err := b.createSyncObjects(); err != nil {
			return nil, err
		}
	}
	if b.commandBuffers == nil {
		if err := b.createCommandBuffers(); err != nil {
			return nil, err
		}
	}
	b.imagesInFlight = make([]*Fence, swapchain.ImageCount)

	b.surfaceGen++
	return &renderer.SurfaceState{
		Width:      width,
		Height:     height,
		ImageCount: swapchain.ImageCount,
		Generation: b.surfaceGen,
	}, nil
}

// TeardownSurface destroys the surface-sized half of the backend. The
// caller has already drained the device.
func (b *Backend) TeardownSurface() error {
	swapchain := b.context.Swapchain
	if swapchain == nil {
		return nil
	}
	for _, framebuffer := range swapchain.Framebuffers {
		framebuffer.Destroy(b.context)
	}
	swapchain.Framebuffers = nil
	swapchain.Destroy(b.context)
	b.context.Swapchain = nil
	return nil
}

// Shutdown releases everything the backend owns, in reverse dependency
// order. The Device itself belongs to whoever created it.
func (b *Backend) Shutdown() {
	if err := b.WaitIdle(); err != nil {
		core.LogError("backend shutdown: %s", err.Error())
	}
	if err := b.TeardownSurface(); err != nil {
		core.LogError("backend shutdown: %s", err.Error())
	}
	for _, cb := range b.commandBuffers {
		cb.Free(b.context, b.context.Device.GraphicsCommandPool)
	}
	b.commandBuffers = nil
	b.recorders = nil
	for i := range b.inFlightFences {
		b.inFlightFences[i].Destroy(b.context)
	}
	b.inFlightFences = nil
	for _, sem := range b.imageAvailableSemaphores {
		vk.DestroySemaphore(b.context.Device.LogicalDevice, sem, b.context.Allocator)
	}
	b.imageAvailableSemaphores = nil
	for _, sem := range b.queueCompleteSemaphores {
		vk.DestroySemaphore(b.context.Device.LogicalDevice, sem, b.context.Allocator)
	}
	b.queueCompleteSemaphores = nil
	if b.context.MainRenderpass != nil {
		b.context.MainRenderpass.Destroy(b.context)
		b.context.MainRenderpass = nil
	}
}

// CreateTexture backs a pooled texture descriptor with an image, used by
// the pipeline's transient pool for temp render targets.
func (b *Backend) CreateTexture(desc metadata.TextureDescriptor) (interface{}, error) {
	format := VulkanFormat(desc.Format)
	if format == vk.FormatUndefined {
		return nil, fmt.Errorf("texture %q has no vulkan format", desc.Name)
	}

	usage := vk.ImageUsageFlags(0)
	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	switch desc.Format {
	case metadata.TextureFormatDepth24Stencil8, metadata.TextureFormatDepth32F:
		usage |= vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	default:
		if desc.RenderTarget {
			usage |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
		}
	}
	if desc.Sampled {
		usage |= vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	}

	return ImageCreate(
		b.context,
		vk.ImageType2d,
		desc.Width,
		desc.Height,
		format,
		vk.ImageTilingOptimal,
		usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		aspect)
}

func (b *Backend) DestroyTexture(resource interface{}) {
	if image, ok := resource.(*Image); ok {
		image.Destroy(b.context)
	}
}

func (b *Backend) regenerateFramebuffers() error {
	swapchain := b.context.Swapchain
	swapchain.Framebuffers = make([]*Framebuffer, swapchain.ImageCount)
	for i := 0; i < int(swapchain.ImageCount); i++ {
		attachments := []vk.ImageView{
			swapchain.Views[i],
			swapchain.DepthAttachment.View,
		}
		framebuffer, err := FramebufferCreate(
			b.context,
			b.context.MainRenderpass,
			b.context.FramebufferWidth,
			b.context.FramebufferHeight,
			attachments)
		if err != nil {
			return err
		}
		swapchain.Framebuffers[i] = framebuffer
	}
	return nil
}

func (b *Backend) createSyncObjects() error {
	b.imageAvailableSemaphores = make([]vk.Semaphore, b.framesInFlight)
	b.queueCompleteSemaphores = make([]vk.Semaphore, b.framesInFlight)
	b.inFlightFences = make([]*Fence, b.framesInFlight)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	for i := 0; i < b.framesInFlight; i++ {
		if res := vk.CreateSemaphore(b.context.Device.LogicalDevice, &semaphoreCreateInfo, b.context.Allocator, &b.imageAvailableSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create semaphore: %s", ResultString(res))
		}
		if res := vk.CreateSemaphore(b.context.Device.LogicalDevice, &semaphoreCreateInfo, b.context.Allocator, &b.queueCompleteSemaphores[i]); res != vk.Success {
			return fmt.Errorf("failed to create semaphore: %s", ResultString(res))
		}
		// Created signaled so the very first wait on each slot passes.
		fence, err := NewFence(b.context, true)
		if err != nil {
			return err
		}
		b.inFlightFences[i] = fence
	}
	return nil
}

func (b *Backend) createCommandBuffers() error {
	b.commandBuffers = make([]*CommandBuffer, b.framesInFlight)
	b.recorders = make([]*Recorder, b.framesInFlight)
	for i := 0; i < b.framesInFlight; i++ {
		cb, err := NewCommandBuffer(b.context, b.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		b.commandBuffers[i] = cb
		b.recorders[i] = &Recorder{
			context: b.context,
			buffer:  cb,
		}
	}
	return nil
}
