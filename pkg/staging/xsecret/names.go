package xsecret

import (
	"path"
	"strings"
)

// 文件名快速路径表，键为小写基本名。
var sensitiveNames = map[string]Category{
	".env":             CategoryEnvironmentFile,
	".envrc":           CategoryEnvironmentFile,
	"id_rsa":           CategoryPrivateKey,
	"id_dsa":           CategoryPrivateKey,
	"id_ecdsa":         CategoryPrivateKey,
	"id_ed25519":       CategoryPrivateKey,
	".npmrc":           CategoryToken,
	".pypirc":          CategoryToken,
	".netrc":           CategoryPassword,
	".pgpass":          CategoryPassword,
	".git-credentials": CategoryPassword,
	".htpasswd":        CategoryPassword,
	".s3cfg":           CategoryCloudCredential,
	".boto":            CategoryCloudCredential,
}

var sensitiveExts = map[string]Category{
	".pem":      CategoryPrivateKey,
	".key":      CategoryPrivateKey,
	".p12":      CategoryPrivateKey,
	".pfx":      CategoryPrivateKey,
	".jks":      CategoryPrivateKey,
	".keystore": CategoryPrivateKey,
	".env":      CategoryEnvironmentFile,
}

// classifyName 返回文件名命中的类别，未命中返回 CategoryNone。
func classifyName(name string) Category {
	slashed := strings.ToLower(strings.ReplaceAll(name, `\`, "/"))
	base := path.Base(slashed)

	if c, ok := sensitiveNames[base]; ok {
		return c
	}
	if strings.HasPrefix(base, ".env.") {
		return CategoryEnvironmentFile
	}
	if c, ok := sensitiveExts[path.Ext(base)]; ok {
		return c
	}
	if base == "credentials" && path.Base(path.Dir(slashed)) == ".aws" {
		return CategoryCloudCredential
	}
	return CategoryNone
}

func baseName(name string) string {
	return path.Base(strings.ReplaceAll(name, `\`, "/"))
}
