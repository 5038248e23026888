// Package artifact fetches the files produced by the offline training
// pipeline: the symptom vocabulary and the model manifest, plus anything the
// manifest references.
//
// References are local paths or URLs:
//
//	models/disease_model.json
//	https://models.example.com/disease_model.json.zst
//	s3://ml-artifacts/disease/v3/symptom_list.json.gz
//	minio://ml-artifacts/disease/v3/model.onnx.lz4
//
// A trailing .gz, .zst or .lz4 is decompressed transparently.
package artifact
