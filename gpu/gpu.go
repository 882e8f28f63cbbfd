// SPDX-License-Identifier: Unlicense OR MIT

//go:build !nogpu

// Package gpu implements the GPU compute dispatcher of spec §4.7: a
// WGSL compute pipeline that parallelizes the delta iteration across
// tiles, with tile-local reference orbits for the mid-zoom mosaic
// problem and seven Adam7 progressive-refinement passes per frame.
// Grounded on gogpu/gg's backend/wgpu package, the only part of the
// retrieved corpus that actually wires hal.Device/hal.Queue to a
// compiled WGSL compute pipeline (//go:embed source, naga.Compile,
// bind-group-layout structs, dispatch).
package gpu

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/types"
)

var log = logrus.WithField("component", "gpu")

//go:embed shaders/mandelbrot.wgsl
var mandelbrotWGSL string

// Dispatcher owns the compute pipeline and bind group layouts for one
// GPU device. One Dispatcher is created per process when a GPU is
// available; sessions reuse it across viewport changes (spec §4.9:
// "GPU device/queue handles initialized when GPU is available").
type Dispatcher struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue

	shaderModule   hal.ShaderModule
	pipelineLayout hal.PipelineLayout
	bindLayout     hal.BindGroupLayout
	pipeline       hal.ComputePipeline

	spirv []uint32

	initialized bool
}

// NewDispatcher compiles the WGSL shader and builds the bind group
// layout, pipeline layout, and compute pipeline against device/queue.
// Callers should treat any returned error as "GPU unavailable" and
// fall back to the CPU worker pool (spec §7 error kind 3).
func NewDispatcher(device hal.Device, queue hal.Queue) (*Dispatcher, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("gpu: device and queue are required")
	}
	d := &Dispatcher{device: device, queue: queue}
	if err := d.init(); err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	spirvBytes, err := naga.Compile(mandelbrotWGSL)
	if err != nil {
		return fmt.Errorf("gpu: compile shader: %w", err)
	}
	d.spirv = bytesToUint32s(spirvBytes)

	shaderModule, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "mandelbrot_delta",
		Source: hal.ShaderSource{SPIRV: d.spirv},
	})
	if err != nil {
		return fmt.Errorf("gpu: create shader module: %w", err)
	}
	d.shaderModule = shaderModule

	bindLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "mandelbrot_bind_layout",
		Entries: []types.BindGroupLayoutEntry{
			{Binding: 0, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{
				Type: types.BufferBindingTypeUniform, MinBindingSize: sizeofUniforms,
			}},
			{Binding: 1, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{
				Type: types.BufferBindingTypeReadOnlyStorage,
			}},
			{Binding: 2, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{
				Type: types.BufferBindingTypeReadOnlyStorage,
			}},
			{Binding: 3, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{
				Type: types.BufferBindingTypeReadOnlyStorage,
			}},
			{Binding: 4, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{
				Type: types.BufferBindingTypeStorage,
			}},
			{Binding: 5, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{
				Type: types.BufferBindingTypeStorage,
			}},
			{Binding: 6, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{
				Type: types.BufferBindingTypeStorage,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group layout: %w", err)
	}
	d.bindLayout = bindLayout

	pipelineLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "mandelbrot_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{d.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}
	d.pipelineLayout = pipelineLayout

	pipeline, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "mandelbrot_delta_pipeline",
		Layout: d.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     d.shaderModule,
			EntryPoint: "cs_delta_iterate",
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create compute pipeline: %w", err)
	}
	d.pipeline = pipeline

	d.initialized = true
	return nil
}

// Frame is everything one Dispatch call needs: the packed reference
// orbit and BLA table (uploaded once per frame, spec §4.7: "Orbit
// upload happens once per frame; all Adam7 passes reuse it"), the
// per-tile info buffer, and the uniform fields that do not change
// between passes.
type Frame struct {
	CanvasWidth, CanvasHeight uint32
	MaxIterations             uint32
	EscapeRadiusSq, TauSq     float32
	TileSize, TilesPerRow     uint32
	ReferenceOrbit            []ReferenceSample
	BLATable                  []ReferenceSample // A coefficient of each BLA entry, level by level; bound to the shader but not read by it
	Tiles                     []TileInfo
}

// Dispatch uploads a Frame once and runs all seven Adam7 passes
// against it, returning the final Output readback. Pending passes
// belonging to a superseded session are the caller's responsibility to
// skip before calling Dispatch again (spec §4.7's cancellation model:
// "GPU dispatches run to completion; pending passes are canceled on
// the CPU side before submission").
func (d *Dispatcher) Dispatch(f Frame) (Output, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.initialized {
		return Output{}, fmt.Errorf("gpu: dispatcher not initialized")
	}

	refBuf, err := d.uploadReferenceOrbit(f.ReferenceOrbit)
	if err != nil {
		return Output{}, err
	}
	defer d.device.DestroyBuffer(refBuf)

	blaBuf, err := d.uploadBLATable(f.BLATable)
	if err != nil {
		return Output{}, err
	}
	defer d.device.DestroyBuffer(blaBuf)

	tileBuf, err := d.uploadTileInfos(f.Tiles)
	if err != nil {
		return Output{}, err
	}
	defer d.device.DestroyBuffer(tileBuf)

	pixelCount := int(f.CanvasWidth) * int(f.CanvasHeight)
	iterBuf, glitchBuf, normBuf, err := d.createOutputBuffers(pixelCount)
	if err != nil {
		return Output{}, err
	}
	defer d.device.DestroyBuffer(iterBuf)
	defer d.device.DestroyBuffer(glitchBuf)
	defer d.device.DestroyBuffer(normBuf)

	for pass := uint32(0); pass < PassCount; pass++ {
		uniBuf, bindGroup, err := d.buildPassBindings(f, pass, refBuf, blaBuf, tileBuf, iterBuf, glitchBuf, normBuf)
		if err != nil {
			return Output{}, err
		}
		if err := d.runPass(bindGroup, f.CanvasWidth, f.CanvasHeight); err != nil {
			d.device.DestroyBuffer(uniBuf)
			return Output{}, fmt.Errorf("gpu: adam7 pass %d: %w", pass, err)
		}
		d.device.DestroyBuffer(uniBuf)
		log.WithField("pass", pass).WithField("fraction", PassFraction(int(pass))).Debug("adam7 pass dispatched")
	}

	return d.readback(iterBuf, glitchBuf, normBuf, pixelCount)
}

func (d *Dispatcher) uploadReferenceOrbit(samples []ReferenceSample) (hal.Buffer, error) {
	data := referenceSamplesToBytes(samples)
	return d.createAndUpload("reference_orbit", data, types.BufferUsageStorage|types.BufferUsageCopyDst)
}

func (d *Dispatcher) uploadBLATable(samples []ReferenceSample) (hal.Buffer, error) {
	data := referenceSamplesToBytes(samples)
	return d.createAndUpload("bla_table", data, types.BufferUsageStorage|types.BufferUsageCopyDst)
}

func (d *Dispatcher) uploadTileInfos(tiles []TileInfo) (hal.Buffer, error) {
	data := tileInfosToBytes(tiles)
	return d.createAndUpload("tile_infos", data, types.BufferUsageStorage|types.BufferUsageCopyDst)
}

func (d *Dispatcher) createAndUpload(label string, data []byte, usage types.BufferUsage) (hal.Buffer, error) {
	if len(data) == 0 {
		data = make([]byte, 16) // zero-size storage buffers are invalid on some backends
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label, Size: uint64(len(data)), Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create %s buffer: %w", label, err)
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		d.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("gpu: write %s buffer: %w", label, err)
	}
	return buf, nil
}

func (d *Dispatcher) createOutputBuffers(pixelCount int) (iter, glitch, norm hal.Buffer, err error) {
	mk := func(label string, elemSize int) (hal.Buffer, error) {
		return d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: label, Size: uint64(pixelCount * elemSize),
			Usage: types.BufferUsageStorage | types.BufferUsageCopySrc | types.BufferUsageMapRead,
		})
	}
	iter, err = mk("out_iterations", 4)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("gpu: create iterations buffer: %w", err)
	}
	glitch, err = mk("out_glitched", 4)
	if err != nil {
		d.device.DestroyBuffer(iter)
		return nil, nil, nil, fmt.Errorf("gpu: create glitched buffer: %w", err)
	}
	norm, err = mk("out_final_z_norm", 4)
	if err != nil {
		d.device.DestroyBuffer(iter)
		d.device.DestroyBuffer(glitch)
		return nil, nil, nil, fmt.Errorf("gpu: create final-z-norm buffer: %w", err)
	}
	return iter, glitch, norm, nil
}

func (d *Dispatcher) buildPassBindings(f Frame, pass uint32, refBuf, blaBuf, tileBuf, iterBuf, glitchBuf, normBuf hal.Buffer) (hal.Buffer, hal.BindGroup, error) {
	uniforms := Uniforms{
		CanvasWidth:      f.CanvasWidth,
		CanvasHeight:     f.CanvasHeight,
		MaxIterations:    f.MaxIterations,
		EscapeRadiusSq:   f.EscapeRadiusSq,
		TauSq:            f.TauSq,
		TileSize:         f.TileSize,
		TilesPerRow:      f.TilesPerRow,
		PassIndex:        pass,
		ReferenceEscaped: 0,
	}
	uniBuf, err := d.createAndUpload("uniforms", uniformsToBytes(uniforms), types.BufferUsageUniform|types.BufferUsageCopyDst)
	if err != nil {
		return nil, nil, err
	}

	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "mandelbrot_bind_group",
		Layout: d.bindLayout,
		Entries: []types.BindGroupEntry{
			{Binding: 0, Resource: types.BufferBinding{Buffer: uniBuf.NativeHandle(), Size: sizeofUniforms}},
			{Binding: 1, Resource: types.BufferBinding{Buffer: refBuf.NativeHandle()}},
			{Binding: 2, Resource: types.BufferBinding{Buffer: blaBuf.NativeHandle()}},
			{Binding: 3, Resource: types.BufferBinding{Buffer: tileBuf.NativeHandle()}},
			{Binding: 4, Resource: types.BufferBinding{Buffer: iterBuf.NativeHandle()}},
			{Binding: 5, Resource: types.BufferBinding{Buffer: glitchBuf.NativeHandle()}},
			{Binding: 6, Resource: types.BufferBinding{Buffer: normBuf.NativeHandle()}},
		},
	})
	if err != nil {
		d.device.DestroyBuffer(uniBuf)
		return nil, nil, fmt.Errorf("gpu: create bind group: %w", err)
	}
	return uniBuf, bindGroup, nil
}

// runPass encodes and submits one compute dispatch, sized to cover the
// whole canvas at 8x8 workgroups; the shader itself early-exits pixels
// not in the current Adam7 pass.
func (d *Dispatcher) runPass(bindGroup hal.BindGroup, width, height uint32) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "mandelbrot_pass"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("mandelbrot_pass"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	cp := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "mandelbrot_delta"})
	cp.SetPipeline(d.pipeline)
	cp.SetBindGroup(0, bindGroup, nil)
	groupsX := (width + 7) / 8
	groupsY := (height + 7) / 8
	cp.Dispatch(groupsX, groupsY, 1)
	cp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !ok {
		return fmt.Errorf("wait for gpu: ok=%v err=%w", ok, err)
	}
	return nil
}

func (d *Dispatcher) readback(iterBuf, glitchBuf, normBuf hal.Buffer, pixelCount int) (Output, error) {
	out := NewOutput(pixelCount)

	iterBytes := make([]byte, pixelCount*4)
	if err := d.queue.ReadBuffer(iterBuf, 0, iterBytes); err != nil {
		return Output{}, fmt.Errorf("gpu: readback iterations: %w", err)
	}
	glitchBytes := make([]byte, pixelCount*4)
	if err := d.queue.ReadBuffer(glitchBuf, 0, glitchBytes); err != nil {
		return Output{}, fmt.Errorf("gpu: readback glitched: %w", err)
	}
	normBytes := make([]byte, pixelCount*4)
	if err := d.queue.ReadBuffer(normBuf, 0, normBytes); err != nil {
		return Output{}, fmt.Errorf("gpu: readback final z norm: %w", err)
	}

	for i := 0; i < pixelCount; i++ {
		out.Iterations[i] = readUint32(iterBytes, i*4)
		out.Glitched[i] = readUint32(glitchBytes, i*4)
		out.FinalZNorm[i] = readFloat32(normBytes, i*4)
	}
	return out, nil
}

// Destroy releases every GPU resource the Dispatcher owns.
func (d *Dispatcher) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == nil {
		return
	}
	if d.pipeline != nil {
		d.device.DestroyComputePipeline(d.pipeline)
		d.pipeline = nil
	}
	if d.pipelineLayout != nil {
		d.device.DestroyPipelineLayout(d.pipelineLayout)
		d.pipelineLayout = nil
	}
	if d.bindLayout != nil {
		d.device.DestroyBindGroupLayout(d.bindLayout)
		d.bindLayout = nil
	}
	if d.shaderModule != nil {
		d.device.DestroyShaderModule(d.shaderModule)
		d.shaderModule = nil
	}
	d.initialized = false
}

// IsInitialized reports whether the dispatcher's pipeline is ready to
// accept Dispatch calls.
func (d *Dispatcher) IsInitialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}
