// Package easing 提供缓动函数（Easing Functions）
//
// 该包只依赖 math，可被纯模拟代码（粒子影响器）引用而不引入渲染层。
// 所有函数接受进度值 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]。
// 粒子影响器在每个关键帧分段内用它们把线性进度映射成混合系数。
//
// 参考：https://easings.net/
package easing

import "math"

// EaseLinear 线性（无缓动）
func EaseLinear(t float64) float64 {
	return t
}

// EaseInCubic 三次方缓入：开始慢，结束快。f(t) = t³
func EaseInCubic(t float64) float64 {
	return t * t * t
}

// EaseOutCubic 三次方缓出：开始快，结束慢。f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseInOutCubic 三次方缓入缓出
//
//	t < 0.5:  f(t) = 4t³
//	t >= 0.5: f(t) = 1 - (-2t + 2)³ / 2
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// EaseInQuad 二次方缓入。f(t) = t²
func EaseInQuad(t float64) float64 {
	return t * t
}

// EaseOutQuad 二次方缓出。f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// EaseOutExpo 指数缓出：开始非常快，结束非常慢。f(t) = 1 - 2^(-10t)
// t=1 时直接返回 1，避免 1 - 2^-10 的残差。
func EaseOutExpo(t float64) float64 {
	if t >= 1.0 {
		return 1.0
	}
	return 1 - math.Pow(2, -10*t)
}

// Clamp01 把 t 限制在 [0, 1]
func Clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// Lerp 线性插值，t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
