package inference

import "github.com/google/wire"

// InferenceProvider builds the model transport from config.
var InferenceProvider = wire.NewSet(NewGeminiClient)
