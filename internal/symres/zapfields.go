package symres

import "go.uber.org/zap"

func zapArch(a Arch) zap.Field {
	return zap.String("arch", a.String())
}

func zapInt(key string, n int) zap.Field {
	return zap.Int(key, n)
}

func zapErr(err error) zap.Field {
	return zap.Error(err)
}
