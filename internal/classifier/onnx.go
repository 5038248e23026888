package classifier

import (
	"context"
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/saqibullah/symptom-disease-predictor/internal/features"
)

// ONNXOptions describes how to run an exported ONNX classifier. The graph
// must take a float32 [1, NFeatures] input and emit an int64 class index;
// the optional probability output is a float32 [1, len(Classes)] tensor
// (skl2onnx with zipmap disabled produces exactly this).
type ONNXOptions struct {
	LibraryPath       string
	Input             string
	LabelOutput       string
	ProbabilityOutput string
	Classes           []string
	NFeatures         int
}

// ONNX runs a classifier through ONNX Runtime.
type ONNX struct {
	session   *ort.DynamicAdvancedSession
	outputs   int
	classes   []string
	nFeatures int
}

func NewONNX(graph []byte, opts ONNXOptions) (*ONNX, error) {
	if opts.Input == "" {
		opts.Input = "float_input"
	}
	if opts.LabelOutput == "" {
		opts.LabelOutput = "label"
	}
	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("onnx: initialize runtime: %w", err)
		}
	}

	outputNames := []string{opts.LabelOutput}
	if opts.ProbabilityOutput != "" {
		outputNames = append(outputNames, opts.ProbabilityOutput)
	}
	session, err := ort.NewDynamicAdvancedSessionWithONNXData(graph, []string{opts.Input}, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w", err)
	}
	return &ONNX{
		session:   session,
		outputs:   len(outputNames),
		classes:   opts.Classes,
		nFeatures: opts.NFeatures,
	}, nil
}

func (o *ONNX) NumFeatures() int { return o.nFeatures }

func (o *ONNX) run(x *features.Vector) (int64, []float32, error) {
	if err := checkLen(x, o.nFeatures); err != nil {
		return 0, nil, err
	}
	input, err := ort.NewTensor(ort.NewShape(1, int64(o.nFeatures)), x.Float32())
	if err != nil {
		return 0, nil, fmt.Errorf("onnx: build input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := make([]ort.Value, o.outputs)
	if err := o.session.Run([]ort.Value{input}, outputs); err != nil {
		return 0, nil, fmt.Errorf("onnx: run: %w", err)
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	labels, ok := outputs[0].(*ort.Tensor[int64])
	if !ok || len(labels.GetData()) == 0 {
		return 0, nil, fmt.Errorf("onnx: label output is not an int64 tensor")
	}
	label := labels.GetData()[0]

	var probs []float32
	if o.outputs > 1 {
		t, ok := outputs[1].(*ort.Tensor[float32])
		if !ok {
			return 0, nil, fmt.Errorf("onnx: probability output is not a float32 tensor")
		}
		probs = append(probs, t.GetData()...)
	}
	return label, probs, nil
}

func (o *ONNX) Predict(_ context.Context, x *features.Vector) (string, error) {
	label, _, err := o.run(x)
	if err != nil {
		return "", err
	}
	return o.className(label)
}

// PredictWithConfidence runs the session once for both outputs.
func (o *ONNX) PredictWithConfidence(_ context.Context, x *features.Vector) (string, *float64, error) {
	label, probs, err := o.run(x)
	if err != nil {
		return "", nil, err
	}
	name, err := o.className(label)
	if err != nil {
		return "", nil, err
	}
	p, ok := topProbability(probs)
	if !ok {
		return name, nil, nil
	}
	return name, &p, nil
}

func (o *ONNX) Confidence(_ context.Context, x *features.Vector) (float64, error) {
	if o.outputs < 2 {
		return 0, ErrConfidenceUnavailable
	}
	_, probs, err := o.run(x)
	if err != nil {
		return 0, err
	}
	p, ok := topProbability(probs)
	if !ok {
		return 0, ErrConfidenceUnavailable
	}
	return p, nil
}

func (o *ONNX) className(label int64) (string, error) {
	if label < 0 || int(label) >= len(o.classes) {
		return "", fmt.Errorf("onnx: class index %d out of range", label)
	}
	return o.classes[label], nil
}

// topProbability is the largest class probability, false when there is
// none or it is not a probability.
func topProbability(probs []float32) (float64, bool) {
	if len(probs) == 0 {
		return 0, false
	}
	best := probs[0]
	for _, p := range probs[1:] {
		if p > best {
			best = p
		}
	}
	if !ValidConfidence(float64(best)) {
		return 0, false
	}
	return float64(best), true
}

// Close releases the session and the runtime environment.
func (o *ONNX) Close() error {
	if o == nil || o.session == nil {
		return nil
	}
	err := o.session.Destroy()
	o.session = nil
	if derr := ort.DestroyEnvironment(); err == nil {
		err = derr
	}
	return err
}
