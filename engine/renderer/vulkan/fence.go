package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/lumengine/lumen/engine/core"
)

type Fence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *Context, createSignaled bool) (*Fence, error) {
	fence := &Fence{
		IsSignaled: createSignaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if fence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var pFence vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &pFence); res != vk.Success {
		return nil, fmt.Errorf("failed to create fence: %s", ResultString(res))
	}
	fence.Handle = pFence
	return fence, nil
}

func (f *Fence) Destroy(context *Context) {
	if f.Handle != nil {
		vk.DestroyFence(context.Device.LogicalDevice, f.Handle, context.Allocator)
		f.Handle = nil
	}
	f.IsSignaled = false
}

// Wait blocks until the fence signals. An already-signaled fence returns
// immediately, which is what makes waiting on a never-submitted slot free.
func (f *Fence) Wait(context *Context, timeoutNs uint64) error {
	if f.IsSignaled {
		return nil
	}
	result := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{f.Handle}, vk.True, timeoutNs)
	switch result {
	case vk.Success:
		f.IsSignaled = true
		return nil
	case vk.Timeout:
		return fmt.Errorf("fence wait timed out")
	case vk.ErrorDeviceLost:
		return core.ErrDeviceLost
	default:
		return fmt.Errorf("fence wait failed: %s", ResultString(result))
	}
}

func (f *Fence) Reset(context *Context) error {
	if !f.IsSignaled {
		return nil
	}
	if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{f.Handle}); res != vk.Success {
		return fmt.Errorf("failed to reset fence: %s", ResultString(res))
	}
	f.IsSignaled = false
	return nil
}
