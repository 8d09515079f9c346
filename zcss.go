// Package zcss is a build-time transform that converts css/scss
// tagged-template declarations embedded in script sources into static
// stylesheets, replacing each declaration with a compile-time
// constant class name. No style evaluation remains in shipped output.
//
// # Transforming a tree
//
//	result, err := zcss.Build(ctx, zcss.Config{
//		Patterns: []string{"src/**/*"},
//		OutDir:   "dist",
//		Options:  zcss.DefaultOptions(),
//	})
//
// # Hosting inside a bundler
//
// A host with its own module graph drives a Session directly:
//
//	sess := zcss.NewSession(zcss.DefaultOptions())
//	sess.BuildStart()
//	res, err := sess.TransformFile(ctx, path, src)
//	// resolve/load hooks:
//	id, ok := sess.ResolveID(specifier, importer)
//	css, ok := sess.Load(id)
//	sess.BuildEnd()
//
// Source text like
//
//	import { css } from "zcss";
//	const box = css`color: red;`;
//
// rewrites to
//
//	import "./box-1x2c9aef.zcss.css";
//	const box = "box-1x2c9aef";
//
// with the stylesheet .box-1x2c9aef{color:red;} registered under the
// virtual path next to the source file. The class name is a pure
// function of the resolved CSS body, so identical bodies anywhere in
// a build share one stylesheet.
//
// # CLI Tool
//
// zcss also provides a CLI. Install with:
//
//	go install github.com/zcss/zcss/cmd/zcss@latest
package zcss
