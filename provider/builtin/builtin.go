// 內建平台的註冊
package builtin

import (
	"idbridge/provider"
	"idbridge/provider/dingtalk"
	"idbridge/provider/oidc"
	"idbridge/provider/wecom"
)

// NewRegistry 建立已註冊釘釘、企業微信與 OIDC 的 Registry
func NewRegistry(deps provider.Deps, opts ...provider.RegistryOption) *provider.Registry {
	opts = append([]provider.RegistryOption{provider.WithBuiltins(Register)}, opts...)
	return provider.NewRegistry(deps, opts...)
}

func Register(r *provider.Registry) {
	r.RegisterBuiltin(dingtalk.Name, dingtalk.New)
	r.RegisterBuiltin(wecom.Name, wecom.New)
	r.RegisterBuiltin(oidc.Name, oidc.New)
}
