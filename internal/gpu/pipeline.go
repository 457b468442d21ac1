package gpu

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"

	"Triangle/internal/render"
	"Triangle/internal/shader"
)

// CreatePipeline builds the color-only render pass and the triangle
// pipeline for format. Viewport and scissor are dynamic state.
func (d *Device) CreatePipeline(format vulkan.Format) (*render.Pipeline, error) {
	p := &render.Pipeline{Format: format}

	renderPass, err := d.createRenderPass(format)
	if err != nil {
		return nil, err
	}
	p.RenderPass = renderPass

	if err := d.createGraphicsPipeline(p); err != nil {
		d.DestroyPipeline(p)
		return nil, err
	}
	return p, nil
}

// DestroyPipeline releases the pipeline, its layout and render pass.
func (d *Device) DestroyPipeline(p *render.Pipeline) {
	if p.Handle != vulkan.Pipeline(vulkan.NullHandle) {
		vulkan.DestroyPipeline(d.device, p.Handle, nil)
		p.Handle = vulkan.Pipeline(vulkan.NullHandle)
	}
	if p.Layout != vulkan.PipelineLayout(vulkan.NullHandle) {
		vulkan.DestroyPipelineLayout(d.device, p.Layout, nil)
		p.Layout = vulkan.PipelineLayout(vulkan.NullHandle)
	}
	if p.RenderPass != vulkan.RenderPass(vulkan.NullHandle) {
		vulkan.DestroyRenderPass(d.device, p.RenderPass, nil)
		p.RenderPass = vulkan.RenderPass(vulkan.NullHandle)
	}
}

func (d *Device) createRenderPass(format vulkan.Format) (vulkan.RenderPass, error) {
	colorAttachment := vulkan.AttachmentDescription{
		Format:         format,
		Samples:        vulkan.SampleCount1Bit,
		LoadOp:         vulkan.AttachmentLoadOpClear,
		StoreOp:        vulkan.AttachmentStoreOpStore,
		StencilLoadOp:  vulkan.AttachmentLoadOpDontCare,
		StencilStoreOp: vulkan.AttachmentStoreOpDontCare,
		InitialLayout:  vulkan.ImageLayoutUndefined,
		FinalLayout:    vulkan.ImageLayoutPresentSrc,
	}
	colorRef := vulkan.AttachmentReference{
		Attachment: 0,
		Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
	}
	subpass := vulkan.SubpassDescription{
		PipelineBindPoint:    vulkan.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vulkan.AttachmentReference{colorRef},
	}

	// The layout transition must wait until the presentation engine has
	// released the image, which the submit expresses at this stage.
	dependency := vulkan.SubpassDependency{
		SrcSubpass:    vulkan.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vulkan.AccessFlags(vulkan.AccessColorAttachmentWriteBit),
	}

	createInfo := vulkan.RenderPassCreateInfo{
		SType:           vulkan.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vulkan.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vulkan.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vulkan.SubpassDependency{dependency},
	}

	var renderPass vulkan.RenderPass
	if res := vulkan.CreateRenderPass(d.device, &createInfo, nil, &renderPass); res != vulkan.Success {
		return vulkan.RenderPass(vulkan.NullHandle), render.ResultError(res, "create render pass")
	}
	return renderPass, nil
}

func (d *Device) createGraphicsPipeline(p *render.Pipeline) error {
	vertModule, err := d.createShaderModule(d.opts.VertexShader)
	if err != nil {
		return errors.Wrap(err, "vertex shader")
	}
	defer vulkan.DestroyShaderModule(d.device, vertModule, nil)
	fragModule, err := d.createShaderModule(d.opts.FragmentShader)
	if err != nil {
		return errors.Wrap(err, "fragment shader")
	}
	defer vulkan.DestroyShaderModule(d.device, fragModule, nil)

	mainName := "main\x00"
	shaderStages := []vulkan.PipelineShaderStageCreateInfo{
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageVertexBit,
			Module: vertModule,
			PName:  mainName,
		},
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  mainName,
		},
	}

	// Vertices come from gl_VertexIndex.
	vertexInput := vulkan.PipelineVertexInputStateCreateInfo{
		SType: vulkan.StructureTypePipelineVertexInputStateCreateInfo,
	}
	inputAssembly := vulkan.PipelineInputAssemblyStateCreateInfo{
		SType:                  vulkan.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vulkan.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vulkan.False,
	}
	viewportState := vulkan.PipelineViewportStateCreateInfo{
		SType:         vulkan.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	dynamicStates := []vulkan.DynamicState{
		vulkan.DynamicStateViewport,
		vulkan.DynamicStateScissor,
	}
	dynamicState := vulkan.PipelineDynamicStateCreateInfo{
		SType:             vulkan.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}
	rasterizer := vulkan.PipelineRasterizationStateCreateInfo{
		SType:                   vulkan.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vulkan.False,
		RasterizerDiscardEnable: vulkan.False,
		PolygonMode:             vulkan.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vulkan.CullModeFlags(vulkan.CullModeBackBit),
		FrontFace:               vulkan.FrontFaceClockwise,
		DepthBiasEnable:         vulkan.False,
	}
	multisampling := vulkan.PipelineMultisampleStateCreateInfo{
		SType:                vulkan.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vulkan.SampleCount1Bit,
	}
	colorBlendAttachment := vulkan.PipelineColorBlendAttachmentState{
		ColorWriteMask: vulkan.ColorComponentFlags(vulkan.ColorComponentRBit | vulkan.ColorComponentGBit | vulkan.ColorComponentBBit | vulkan.ColorComponentABit),
		BlendEnable:    vulkan.False,
	}
	colorBlending := vulkan.PipelineColorBlendStateCreateInfo{
		SType:           vulkan.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vulkan.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}

	layoutInfo := vulkan.PipelineLayoutCreateInfo{
		SType: vulkan.StructureTypePipelineLayoutCreateInfo,
	}
	if res := vulkan.CreatePipelineLayout(d.device, &layoutInfo, nil, &p.Layout); res != vulkan.Success {
		return render.ResultError(res, "create pipeline layout")
	}

	pipelineInfo := vulkan.GraphicsPipelineCreateInfo{
		SType:               vulkan.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              p.Layout,
		RenderPass:          p.RenderPass,
		Subpass:             0,
	}

	pipelines := make([]vulkan.Pipeline, 1)
	if res := vulkan.CreateGraphicsPipelines(d.device, vulkan.PipelineCache(vulkan.NullHandle), 1, []vulkan.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines); res != vulkan.Success {
		return render.ResultError(res, "create graphics pipeline")
	}
	p.Handle = pipelines[0]
	return nil
}

func (d *Device) createShaderModule(code shader.Code) (vulkan.ShaderModule, error) {
	if len(code) == 0 {
		return vulkan.ShaderModule(vulkan.NullHandle), shader.ErrEmpty
	}
	createInfo := vulkan.ShaderModuleCreateInfo{
		SType:    vulkan.StructureTypeShaderModuleCreateInfo,
		CodeSize: code.Size(),
		PCode:    code,
	}
	var module vulkan.ShaderModule
	if res := vulkan.CreateShaderModule(d.device, &createInfo, nil, &module); res != vulkan.Success {
		return vulkan.ShaderModule(vulkan.NullHandle), render.ResultError(res, "create shader module")
	}
	return module, nil
}
