package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type Framebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *Renderpass
}

func FramebufferCreate(context *Context, renderpass *Renderpass, width, height uint32, attachments []vk.ImageView) (*Framebuffer, error) {
	framebuffer := &Framebuffer{
		Attachments: make([]vk.ImageView, len(attachments)),
		Renderpass:  renderpass,
	}
	copy(framebuffer.Attachments, attachments)

	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: uint32(len(framebuffer.Attachments)),
		PAttachments:    framebuffer.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}

	var pFramebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &framebufferCreateInfo, context.Allocator, &pFramebuffer); res != vk.Success {
		return nil, fmt.Errorf("failed to create framebuffer: %s", ResultString(res))
	}
	framebuffer.Handle = pFramebuffer
	return framebuffer, nil
}

func (fb *Framebuffer) Destroy(context *Context) {
	if fb.Handle != nil {
		vk.DestroyFramebuffer(context.Device.LogicalDevice, fb.Handle, context.Allocator)
		fb.Handle = nil
	}
	fb.Attachments = nil
	fb.Renderpass = nil
}
