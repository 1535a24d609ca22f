package vulkan

import (
	vk "github.com/goki/vulkan"
)

// GraphicsPipeline is the compiled pipeline-state object this backend
// hands out through a renderer.PipelineProvider. Shader compilation and
// pipeline baking happen at load time; stages only ever bind these.
type GraphicsPipeline struct {
	Handle vk.Pipeline
	Layout vk.PipelineLayout
}

func (p *GraphicsPipeline) Bind(commandBuffer *CommandBuffer, bindPoint vk.PipelineBindPoint) {
	vk.CmdBindPipeline(commandBuffer.Handle, bindPoint, p.Handle)
}

func (p *GraphicsPipeline) Destroy(context *Context) {
	if p.Handle != nil {
		vk.DestroyPipeline(context.Device.LogicalDevice, p.Handle, context.Allocator)
		p.Handle = nil
	}
	if p.Layout != nil {
		vk.DestroyPipelineLayout(context.Device.LogicalDevice, p.Layout, context.Allocator)
		p.Layout = nil
	}
}
