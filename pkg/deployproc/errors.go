// Copyright (c) 2026 The Deployproc Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package deployproc

import "errors"

// The pipeline surfaces every failure as one of these kinds, wrapped with
// step context. None of them is retried internally; callers match with
// errors.Is.
var (
	ErrDirtyRepository   = errors.New("source repository has uncommitted changes")
	ErrMissingRemotes    = errors.New("no push remotes configured")
	ErrInvalidTagName    = errors.New("tag name is empty")
	ErrUnexpectedProbe   = errors.New("unexpected error probing remote branch")
	ErrMergeConflict     = errors.New("could not merge upstream branch")
	ErrDependencyInstall = errors.New("dependency install failed")
	ErrCommit            = errors.New("could not commit artifact")
	ErrTag               = errors.New("could not tag artifact")
	ErrPush              = errors.New("could not push artifact")
	ErrPrepare           = errors.New("could not prepare staging directory")
)
