package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/rushteam/rentprice/core"
)

// 解压后的制品大小上限
const maxArtifactSize = 64 << 20

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// artifactDoc 是模型制品的 JSON 文档。
//
//	{"type":"mlp","inputs":8,"layers":[{"weights":[[...]],"biases":[...],"activation":"relu"}]}
//	{"type":"linear","bias":1200,"weights":[...]}
type artifactDoc struct {
	Type    string    `json:"type"`
	Inputs  int       `json:"inputs"`
	Layers  []Layer   `json:"layers"`
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
}

// DecodeArtifact 把制品字节反序列化为可推理的模型。
// 支持 zstd / gzip 压缩（按魔数识别）与未压缩 JSON。
func DecodeArtifact(data []byte) (Regressor, error) {
	raw, err := decompress(data)
	if err != nil {
		return nil, core.NewInvalidArtifactError("解压模型制品失败", err)
	}

	var doc artifactDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, core.NewInvalidArtifactError("解析模型制品失败", err)
	}

	var m Regressor
	switch doc.Type {
	case "mlp":
		m, err = NewMLPModel(doc.Inputs, doc.Layers)
	case "linear":
		m, err = NewLinearModel(doc.Bias, doc.Weights)
	default:
		err = fmt.Errorf("unknown model type %q", doc.Type)
	}
	if err != nil {
		return nil, core.NewInvalidArtifactError("构造模型失败", err)
	}
	return m, nil
}

// EncodeArtifact 把 MLP 序列化为制品 JSON（测试与工具使用）
func EncodeArtifact(m *MLPModel) ([]byte, error) {
	return json.Marshal(artifactDoc{Type: "mlp", Inputs: m.inputs, Layers: m.layers})
}

func decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxArtifactSize))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		out, err := io.ReadAll(io.LimitReader(zr, maxArtifactSize+1))
		if err != nil {
			return nil, err
		}
		if len(out) > maxArtifactSize {
			return nil, fmt.Errorf("artifact exceeds %d bytes", maxArtifactSize)
		}
		return out, nil
	default:
		return data, nil
	}
}
