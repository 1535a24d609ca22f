package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/lumengine/lumen/engine/renderer"
	"github.com/lumengine/lumen/engine/renderer/metadata"
)

// Recorder records one frame slot's commands. The camera targets resolve
// to the swapchain framebuffer of the image acquired for the frame;
// passes naming a target with no registered framebuffer fail, which the
// orchestrator turns into a skipped stage.
type Recorder struct {
	context    *Context
	buffer     *CommandBuffer
	imageIndex uint32
	inPass     bool
}

var _ renderer.CommandRecorder = (*Recorder)(nil)

func (r *Recorder) framebufferFor(color metadata.RenderTargetID) (vk.Framebuffer, error) {
	switch color {
	case metadata.TargetCameraColor, metadata.TargetInvalid:
		// Depth-only passes share the camera framebuffer; its depth
		// attachment is the one they write.
		return r.context.Swapchain.Framebuffers[r.imageIndex].Handle, nil
	default:
		return nil, fmt.Errorf("no framebuffer registered for target %d", color)
	}
}

func (r *Recorder) BeginRenderPass(color, depth metadata.RenderTargetID) error {
	if r.inPass {
		return fmt.Errorf("render pass already open")
	}
	framebuffer, err := r.framebufferFor(color)
	if err != nil {
		return err
	}
	r.context.MainRenderpass.W = float32(r.context.FramebufferWidth)
	r.context.MainRenderpass.H = float32(r.context.FramebufferHeight)
	r.context.MainRenderpass.Begin(r.buffer, framebuffer)
	r.inPass = true
	return nil
}

func (r *Recorder) EndRenderPass() {
	if !r.inPass {
		return
	}
	r.context.MainRenderpass.End(r.buffer)
	r.inPass = false
}

func (r *Recorder) BindPipeline(ps renderer.PipelineState) error {
	pipeline, ok := ps.(*GraphicsPipeline)
	if !ok {
		return fmt.Errorf("pipeline state %T is not a vulkan graphics pipeline", ps)
	}
	pipeline.Bind(r.buffer, vk.PipelineBindPointGraphics)
	return nil
}

func (r *Recorder) SetViewport(width, height uint32) {
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: width, Height: height},
	}
	vk.CmdSetViewport(r.buffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(r.buffer.Handle, 0, 1, []vk.Rect2D{scissor})
}

func (r *Recorder) BindVertexBuffer(buffer interface{}) error {
	handle, ok := buffer.(vk.Buffer)
	if !ok {
		return fmt.Errorf("vertex buffer %T is not a vulkan buffer", buffer)
	}
	vk.CmdBindVertexBuffers(r.buffer.Handle, 0, 1, []vk.Buffer{handle}, []vk.DeviceSize{0})
	return nil
}

func (r *Recorder) BindIndexBuffer(buffer interface{}) error {
	handle, ok := buffer.(vk.Buffer)
	if !ok {
		return fmt.Errorf("index buffer %T is not a vulkan buffer", buffer)
	}
	vk.CmdBindIndexBuffer(r.buffer.Handle, handle, 0, vk.IndexTypeUint32)
	return nil
}

func (r *Recorder) Draw(vertexCount uint32) {
	vk.CmdDraw(r.buffer.Handle, vertexCount, 1, 0, 0)
}

func (r *Recorder) DrawIndexed(indexCount uint32) {
	vk.CmdDrawIndexed(r.buffer.Handle, indexCount, 1, 0, 0, 0)
}

func (r *Recorder) DrawFullScreen() {
	// One oversized triangle; the vertex shader synthesizes the corners
	// from gl_VertexIndex.
	vk.CmdDraw(r.buffer.Handle, 3, 1, 0, 0)
}

func (r *Recorder) Dispatch(groupsX, groupsY, groupsZ uint32) {
	vk.CmdDispatch(r.buffer.Handle, groupsX, groupsY, groupsZ)
}
